// Пакет model — доменные модели Portal Module.
package model

import (
	"errors"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// ErrIncompleteSession — попытка создать сессию без одного из полей
// (token, role, subject id). Частичные сессии не допускаются.
var ErrIncompleteSession = errors.New("неполная сессия: token, role и subject id задаются только вместе")

// Session — сессия пользователя портала.
// Нулевое значение — пустая сессия (анонимный пользователь).
// Role и SubjectID заданы тогда и только тогда, когда задан Token.
type Session struct {
	// Token — непрозрачный credential, выданный backend при login.
	Token string
	// Role — роль пользователя.
	Role rbac.Role
	// SubjectID — идентификатор пациента (P-...) или врача (DR-...).
	SubjectID string
}

// NewSession создаёт сессию из ответа login.
// Все три поля обязательны.
func NewSession(token string, role rbac.Role, subjectID string) (Session, error) {
	s := Session{Token: token, Role: role, SubjectID: subjectID}
	if s.IsEmpty() || !s.IsComplete() {
		return Session{}, ErrIncompleteSession
	}
	return s, nil
}

// IsEmpty сообщает, что сессия отсутствует (все поля пустые).
func (s Session) IsEmpty() bool {
	return s == Session{}
}

// IsComplete сообщает, что заданы все три поля и роль допустима.
func (s Session) IsComplete() bool {
	return s.Token != "" && s.Role.IsValid() && s.SubjectID != ""
}

// HasRole сообщает, что сессия присутствует и её роль равна role.
func (s Session) HasRole(role rbac.Role) bool {
	return s.IsComplete() && s.Role == role
}
