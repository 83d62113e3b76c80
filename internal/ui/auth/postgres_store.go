package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/repository"
)

// SessionRepository — хранилище строк сессий для PostgresStore.
// Реализуется repository.PortalSessionRepository.
type SessionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*repository.PortalSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Replace(ctx context.Context, previous, id uuid.UUID, s model.Session) error
}

// PostgresStore — Store, хранящий тройку в таблице portal_sessions.
// Cookie содержит только зашифрованный id строки.
type PostgresStore struct {
	codec  *CookieCodec
	opts   CookieOptions
	repo   SessionRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresStore создаёт хранилище сессий в PostgreSQL.
func NewPostgresStore(codec *CookieCodec, opts CookieOptions, repo SessionRepository, logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		codec:  codec,
		opts:   opts,
		repo:   repo,
		logger: logger.With(slog.String("component", "postgres_session_store")),
		now:    time.Now,
	}
}

// Load возвращает сессию по id из cookie.
// Удалённая строка (logout) — пустая сессия.
func (s *PostgresStore) Load(r *http.Request) (model.Session, error) {
	id, ok := s.sessionID(r)
	if !ok {
		return model.Session{}, nil
	}

	row, err := s.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Session{}, nil
		}
		return model.Session{}, fmt.Errorf("чтение сессии: %w", err)
	}
	return row.Session, nil
}

// Save заменяет сессию браузера на новую в одной транзакции.
func (s *PostgresStore) Save(w http.ResponseWriter, r *http.Request, session model.Session) error {
	if !session.IsComplete() {
		return model.ErrIncompleteSession
	}

	previous, _ := s.sessionID(r)
	id := uuid.New()
	if err := s.repo.Replace(r.Context(), previous, id, session); err != nil {
		return fmt.Errorf("сохранение сессии: %w", err)
	}

	value, err := s.codec.Encrypt(cookiePayload{SID: id.String(), IssuedAt: s.now().Unix()})
	if err != nil {
		return err
	}
	setSessionCookie(w, value, s.opts)
	return nil
}

// Clear удаляет строку сессии и cookie.
func (s *PostgresStore) Clear(w http.ResponseWriter, r *http.Request) error {
	clearSessionCookie(w, s.opts)

	id, ok := s.sessionID(r)
	if !ok {
		return nil
	}
	if err := s.repo.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("удаление сессии: %w", err)
	}
	return nil
}

// sessionID извлекает id сессии из cookie; uuid.Nil, false если его нет.
func (s *PostgresStore) sessionID(r *http.Request) (uuid.UUID, bool) {
	p, ok, err := decodePayload(r, s.codec, s.opts.MaxAge, s.now())
	if err != nil {
		s.logger.Debug("Cookie сессии не прочитана, считается пустой",
			slog.String("error", err.Error()),
		)
		return uuid.Nil, false
	}
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(p.SID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
