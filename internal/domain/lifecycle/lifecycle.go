// Пакет lifecycle — конечный автомат жизненного цикла сессии портала.
//
// Состояния: anonymous, patient, doctor.
// Переходы:
//   - anonymous → patient | doctor — login с ролью
//   - patient | doctor → anonymous — logout
//
// Logout из anonymous — no-op (очистка идемпотентна).
// Login из аутентифицированного состояния запрещён: смена роли
// выполняется только через logout.
package lifecycle

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// State — состояние сессии браузера.
type State string

const (
	// StateAnonymous — сессии нет.
	StateAnonymous State = "anonymous"
	// StatePatient — аутентифицирован как пациент.
	StatePatient State = "patient"
	// StateDoctor — аутентифицирован как врач.
	StateDoctor State = "doctor"
)

// EventKind — тип события жизненного цикла.
type EventKind string

const (
	EventLogin  EventKind = "login"
	EventLogout EventKind = "logout"
)

// Event — событие жизненного цикла. Role задаётся только для login.
type Event struct {
	Kind EventKind
	Role rbac.Role
}

// Login возвращает событие успешного входа с ролью.
func Login(role rbac.Role) Event {
	return Event{Kind: EventLogin, Role: role}
}

// Logout возвращает событие выхода.
func Logout() Event {
	return Event{Kind: EventLogout}
}

// transitionsTotal — количество выполненных переходов.
var transitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pm_session_transitions_total",
		Help: "Количество переходов жизненного цикла сессии",
	},
	[]string{"from", "to"},
)

// validTransitions — матрица допустимых переходов по событиям.
var validTransitions = map[State]map[EventKind]bool{
	StateAnonymous: {EventLogin: true, EventLogout: true},
	StatePatient:   {EventLogout: true},
	StateDoctor:    {EventLogout: true},
}

// StateOf вычисляет состояние по сессии.
func StateOf(s model.Session) State {
	if !s.IsComplete() {
		return StateAnonymous
	}
	return stateForRole(s.Role)
}

func stateForRole(r rbac.Role) State {
	switch r {
	case rbac.RolePatient:
		return StatePatient
	case rbac.RoleDoctor:
		return StateDoctor
	case rbac.RoleNone:
		return StateAnonymous
	}
	return StateAnonymous
}

// Next возвращает состояние после события или TransitionError.
func Next(from State, ev Event) (State, error) {
	events, ok := validTransitions[from]
	if !ok {
		return from, &TransitionError{
			Code:    "INVALID_STATE",
			Message: fmt.Sprintf("неизвестное состояние %q", from),
		}
	}
	if !events[ev.Kind] {
		return from, &TransitionError{
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("событие %s недопустимо в состоянии %s", ev.Kind, from),
		}
	}

	switch ev.Kind {
	case EventLogout:
		return StateAnonymous, nil
	case EventLogin:
		if !ev.Role.IsValid() {
			return from, &TransitionError{
				Code:    "INVALID_ROLE",
				Message: fmt.Sprintf("login с недопустимой ролью %v", ev.Role),
			}
		}
		return stateForRole(ev.Role), nil
	}
	return from, &TransitionError{
		Code:    "INVALID_TRANSITION",
		Message: fmt.Sprintf("неизвестное событие %q", ev.Kind),
	}
}

// TransitionError — ошибка перехода жизненного цикла.
type TransitionError struct {
	Code    string // INVALID_STATE, INVALID_TRANSITION, INVALID_ROLE
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Tracker применяет события к состоянию сессии, журналирует
// и считает выполненные переходы.
type Tracker struct {
	logger *slog.Logger
}

// NewTracker создаёт Tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{logger: logger.With(slog.String("component", "session_lifecycle"))}
}

// Apply выполняет переход из состояния текущей сессии.
// Logout из anonymous не считается переходом и не журналируется.
func (t *Tracker) Apply(current model.Session, ev Event, subjectID string) (State, error) {
	from := StateOf(current)
	to, err := Next(from, ev)
	if err != nil {
		t.logger.Warn("Недопустимый переход сессии",
			slog.String("from", string(from)),
			slog.String("event", string(ev.Kind)),
			slog.String("error", err.Error()),
		)
		return from, err
	}
	if from == to {
		return to, nil
	}

	transitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	t.logger.Info("Переход сессии",
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.String("subject_id", subjectID),
	)
	return to, nil
}
