// Пакет rbac — роли пользователей портала и их маршруты по умолчанию.
// Роль — закрытый вариант {Patient, Doctor}: любая другая строка
// отклоняется при разборе, все switch по Role исчерпывающие.
package rbac

import (
	"errors"
	"fmt"
)

// Role — роль аутентифицированного пользователя.
// Нулевое значение RoleNone означает «роль отсутствует» (анонимный пользователь).
type Role uint8

const (
	// RoleNone — роль не задана (нет сессии).
	RoleNone Role = iota
	// RolePatient — пациент: просматривает собственную историю.
	RolePatient
	// RoleDoctor — врач: загружает записи и ищет историю пациентов.
	RoleDoctor
)

// Значения ролей в протоколе backend.
const (
	wirePatient = "Patient"
	wireDoctor  = "Doctor"
)

// Маршруты по умолчанию для ролей и публичная точка входа.
const (
	RoutePublic  = "/"
	RoutePatient = "/patient"
	RouteDoctor  = "/doctor"
)

// ErrInvalidRole — роль не входит в {Patient, Doctor}.
var ErrInvalidRole = errors.New("некорректная роль: допустимые значения — Patient, Doctor")

// ParseRole разбирает роль из протокола backend ("Patient" / "Doctor").
// Регистр учитывается: backend отдаёт роли ровно в таком виде.
func ParseRole(s string) (Role, error) {
	switch s {
	case wirePatient:
		return RolePatient, nil
	case wireDoctor:
		return RoleDoctor, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// String возвращает значение роли в протоколе backend.
func (r Role) String() string {
	switch r {
	case RolePatient:
		return wirePatient
	case RoleDoctor:
		return wireDoctor
	case RoleNone:
		return ""
	}
	return fmt.Sprintf("Role(%d)", uint8(r))
}

// IsValid сообщает, является ли роль одной из {Patient, Doctor}.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleDoctor:
		return true
	case RoleNone:
		return false
	}
	return false
}

// MarshalText реализует encoding.TextMarshaler (JSON-сериализация сессии).
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRole, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText реализует encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// DefaultRoute возвращает страницу роли по умолчанию.
// Для RoleNone и неизвестных значений — публичная точка входа.
func DefaultRoute(r Role) string {
	switch r {
	case RolePatient:
		return RoutePatient
	case RoleDoctor:
		return RouteDoctor
	case RoleNone:
		return RoutePublic
	}
	return RoutePublic
}

// All возвращает все допустимые роли (для форм регистрации).
func All() []Role {
	return []Role{RolePatient, RoleDoctor}
}
