package auth

import (
	"net/http"
	"time"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
)

// Store — хранилище сессии одного браузера.
//
// Save записывает тройку целиком; читатель видит либо прежнюю тройку,
// либо новую. Load возвращает пустую сессию, если ничего не сохранено,
// cookie повреждена или сессия отозвана. Clear идемпотентен.
// Ошибка возвращается только при сбое инфраструктуры хранилища.
type Store interface {
	Load(r *http.Request) (model.Session, error)
	Save(w http.ResponseWriter, r *http.Request, s model.Session) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// cookiePayload — содержимое зашифрованной cookie.
// В режиме postgres заполнены только SID и IssuedAt.
type cookiePayload struct {
	// SID — непрозрачный идентификатор сессии (uuid).
	SID string `json:"sid"`
	// IssuedAt — время входа (Unix timestamp).
	IssuedAt int64 `json:"iat"`
	// Token, Role, SubjectID — тройка сессии (только режим cookie).
	Token     string `json:"token,omitempty"`
	Role      string `json:"role,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
}

// expired сообщает, что cookie старше maxAge.
// maxAge <= 0 — срок жизни не ограничен: сессию завершает только выход.
func (p cookiePayload) expired(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	if p.IssuedAt == 0 {
		return true
	}
	return now.Sub(time.Unix(p.IssuedAt, 0)) > maxAge
}

// decodePayload читает и дешифрует cookie запроса.
// ok=false — cookie нет, она повреждена или старше ограничения срока жизни.
func decodePayload(r *http.Request, codec *CookieCodec, maxAge time.Duration, now time.Time) (cookiePayload, bool, error) {
	raw := readSessionCookie(r)
	if raw == "" {
		return cookiePayload{}, false, nil
	}
	var p cookiePayload
	if err := codec.Decrypt(raw, &p); err != nil {
		return cookiePayload{}, false, err
	}
	if p.SID == "" || p.expired(now, maxAge) {
		return cookiePayload{}, false, nil
	}
	return p, true, nil
}
