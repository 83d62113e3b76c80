package lifecycle

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestNext проверяет матрицу переходов.
func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		from     State
		ev       Event
		want     State
		wantCode string
	}{
		{name: "вход пациента", from: StateAnonymous, ev: Login(rbac.RolePatient), want: StatePatient},
		{name: "вход врача", from: StateAnonymous, ev: Login(rbac.RoleDoctor), want: StateDoctor},
		{name: "выход пациента", from: StatePatient, ev: Logout(), want: StateAnonymous},
		{name: "выход врача", from: StateDoctor, ev: Logout(), want: StateAnonymous},
		{name: "выход без сессии", from: StateAnonymous, ev: Logout(), want: StateAnonymous},
		{name: "смена роли без выхода", from: StatePatient, ev: Login(rbac.RoleDoctor), want: StatePatient, wantCode: "INVALID_TRANSITION"},
		{name: "повторный вход", from: StateDoctor, ev: Login(rbac.RoleDoctor), want: StateDoctor, wantCode: "INVALID_TRANSITION"},
		{name: "вход без роли", from: StateAnonymous, ev: Login(rbac.RoleNone), want: StateAnonymous, wantCode: "INVALID_ROLE"},
		{name: "неизвестное состояние", from: State("admin"), ev: Logout(), want: State("admin"), wantCode: "INVALID_STATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.ev)
			if got != tt.want {
				t.Errorf("Next = %q, ожидается %q", got, tt.want)
			}
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("неожиданная ошибка: %v", err)
				}
				return
			}
			var te *TransitionError
			if !errors.As(err, &te) {
				t.Fatalf("ожидалась TransitionError, получено %v", err)
			}
			if te.Code != tt.wantCode {
				t.Errorf("Code = %q, ожидается %q", te.Code, tt.wantCode)
			}
		})
	}
}

func TestStateOf(t *testing.T) {
	if got := StateOf(model.Session{}); got != StateAnonymous {
		t.Errorf("пустая сессия: %q", got)
	}
	doctor, _ := model.NewSession("tok", rbac.RoleDoctor, "DR-000001")
	if got := StateOf(doctor); got != StateDoctor {
		t.Errorf("сессия врача: %q", got)
	}
	patient, _ := model.NewSession("tok", rbac.RolePatient, "P-000001")
	if got := StateOf(patient); got != StatePatient {
		t.Errorf("сессия пациента: %q", got)
	}
	partial := model.Session{Token: "tok"}
	if got := StateOf(partial); got != StateAnonymous {
		t.Errorf("частичная сессия должна считаться анонимной: %q", got)
	}
}

func TestTracker_Apply(t *testing.T) {
	tr := NewTracker(testLogger())

	state, err := tr.Apply(model.Session{}, Login(rbac.RoleDoctor), "DR-000001")
	if err != nil || state != StateDoctor {
		t.Fatalf("Apply(login) = %q, %v", state, err)
	}

	doctor, _ := model.NewSession("tok", rbac.RoleDoctor, "DR-000001")
	if _, err := tr.Apply(doctor, Login(rbac.RolePatient), "P-000001"); err == nil {
		t.Error("ожидалась ошибка смены роли без выхода")
	}

	state, err = tr.Apply(doctor, Logout(), "DR-000001")
	if err != nil || state != StateAnonymous {
		t.Fatalf("Apply(logout) = %q, %v", state, err)
	}
}
