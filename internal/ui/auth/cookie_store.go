package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// CookieStore — Store, хранящий тройку сессии в зашифрованной cookie.
// Отозванные при logout id попадают в RevocationList, поэтому копия
// cookie, предъявленная после выхода, читается как пустая сессия.
type CookieStore struct {
	codec   *CookieCodec
	opts    CookieOptions
	revoked *RevocationList
	logger  *slog.Logger
	now     func() time.Time
}

// NewCookieStore создаёт хранилище сессий в cookie.
func NewCookieStore(codec *CookieCodec, opts CookieOptions, revoked *RevocationList, logger *slog.Logger) *CookieStore {
	return &CookieStore{
		codec:   codec,
		opts:    opts,
		revoked: revoked,
		logger:  logger.With(slog.String("component", "cookie_session_store")),
		now:     time.Now,
	}
}

// Load возвращает сессию из cookie запроса.
func (s *CookieStore) Load(r *http.Request) (model.Session, error) {
	p, ok, err := decodePayload(r, s.codec, s.opts.MaxAge, s.now())
	if err != nil {
		s.logger.Debug("Cookie сессии не прочитана, считается пустой",
			slog.String("error", err.Error()),
		)
		return model.Session{}, nil
	}
	if !ok || s.revoked.IsRevoked(p.SID) {
		return model.Session{}, nil
	}

	role, err := rbac.ParseRole(p.Role)
	if err != nil {
		return model.Session{}, nil
	}
	session, err := model.NewSession(p.Token, role, p.SubjectID)
	if err != nil {
		return model.Session{}, nil
	}
	return session, nil
}

// Save записывает тройку в новую cookie с новым id.
// Предыдущая сессия браузера (если есть) отзывается.
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, session model.Session) error {
	if !session.IsComplete() {
		return model.ErrIncompleteSession
	}

	if prev, ok, _ := decodePayload(r, s.codec, s.opts.MaxAge, s.now()); ok {
		s.revoked.Revoke(prev.SID)
	}

	value, err := s.codec.Encrypt(cookiePayload{
		SID:       uuid.NewString(),
		IssuedAt:  s.now().Unix(),
		Token:     session.Token,
		Role:      session.Role.String(),
		SubjectID: session.SubjectID,
	})
	if err != nil {
		return err
	}

	setSessionCookie(w, value, s.opts)
	return nil
}

// Clear отзывает текущую сессию и удаляет cookie.
func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if p, ok, _ := decodePayload(r, s.codec, s.opts.MaxAge, s.now()); ok {
		s.revoked.Revoke(p.SID)
	}
	clearSessionCookie(w, s.opts)
	return nil
}
