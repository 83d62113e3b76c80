package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
)

// PortalSession — строка таблицы portal_sessions.
type PortalSession struct {
	// ID — непрозрачный идентификатор сессии, хранящийся в cookie.
	ID uuid.UUID
	// Session — тройка (token, role, subject id).
	Session model.Session
	// CreatedAt — время входа.
	CreatedAt time.Time
}

// PortalSessionRepository — интерфейс для таблицы portal_sessions.
type PortalSessionRepository interface {
	// Create сохраняет сессию под новым id. Занятый id — ErrConflict.
	Create(ctx context.Context, id uuid.UUID, s model.Session) error
	// Get возвращает сессию по id. Если не найдена — ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*PortalSession, error)
	// Delete удаляет сессию. Отсутствующая строка — не ошибка.
	Delete(ctx context.Context, id uuid.UUID) error
	// Replace атомарно удаляет предыдущую сессию браузера (если previous != uuid.Nil)
	// и создаёт новую.
	Replace(ctx context.Context, previous, id uuid.UUID, s model.Session) error
}

type portalSessionRepo struct {
	pool *pgxpool.Pool
}

// NewPortalSessionRepository создаёт репозиторий сессий портала.
func NewPortalSessionRepository(pool *pgxpool.Pool) PortalSessionRepository {
	return &portalSessionRepo{pool: pool}
}

// Create вставляет строку сессии.
func (r *portalSessionRepo) Create(ctx context.Context, id uuid.UUID, s model.Session) error {
	return createSession(ctx, r.pool, id, s)
}

// Get возвращает сессию по id.
func (r *portalSessionRepo) Get(ctx context.Context, id uuid.UUID) (*PortalSession, error) {
	query := `
		SELECT id, token, role, subject_id, created_at
		FROM portal_sessions
		WHERE id = $1`

	var (
		ps   PortalSession
		role string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ps.ID, &ps.Session.Token, &role, &ps.Session.SubjectID, &ps.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения portal_sessions[%s]: %w", id, err)
	}

	ps.Session.Role, err = rbac.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("portal_sessions[%s]: %w", id, err)
	}
	return &ps, nil
}

// Delete удаляет строку сессии.
func (r *portalSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteSession(ctx, r.pool, id)
}

// Replace выполняет delete + insert в одной транзакции:
// читатель видит либо старую сессию, либо новую.
func (r *portalSessionRepo) Replace(ctx context.Context, previous, id uuid.UUID, s model.Session) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		if previous != uuid.Nil {
			if err := deleteSession(ctx, tx, previous); err != nil {
				return err
			}
		}
		return createSession(ctx, tx, id, s)
	})
}

func createSession(ctx context.Context, db querier, id uuid.UUID, s model.Session) error {
	if !s.IsComplete() {
		return model.ErrIncompleteSession
	}

	query := `
		INSERT INTO portal_sessions (id, token, role, subject_id)
		VALUES ($1, $2, $3, $4)`

	_, err := db.Exec(ctx, query, id, s.Token, s.Role.String(), s.SubjectID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("ошибка создания portal_sessions[%s]: %w", id, err)
	}
	return nil
}

func deleteSession(ctx context.Context, db querier, id uuid.UUID) error {
	_, err := db.Exec(ctx, `DELETE FROM portal_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления portal_sessions[%s]: %w", id, err)
	}
	return nil
}
