// Пакет repository — таблица portal_sessions: серверные сессии портала
// для PM_SESSION_STORE=postgres. Cookie хранит только id строки.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound — сессии с таким id нет: выход, чужой или подделанный cookie.
	ErrNotFound = errors.New("сессия не найдена")
	// ErrConflict — id сессии уже занят.
	ErrConflict = errors.New("id сессии уже занят")
)

// querier — общее для *pgxpool.Pool и pgx.Tx: запросы к portal_sessions
// выполняются одинаково внутри и вне транзакции Replace.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx выполняет fn в транзакции; ошибка fn откатывает её.
func withTx(ctx context.Context, db txBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("начало транзакции portal_sessions: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // после Commit — no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("коммит транзакции portal_sessions: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
