// Пакет middleware — HTTP middleware UI портала.
// auth.go — загрузка сессии из Store в контекст запроса и проверка роли маршрута.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/auth"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/guard"
)

// contextKey — тип для ключей контекста UI (избегаем коллизий с API middleware).
type contextKey string

const (
	// ContextKeyUISession — сессия портала в контексте запроса.
	ContextKeyUISession contextKey = "ui_session"
)

// htmxRequestHeader — заголовок, которым HTMX помечает свои запросы.
const htmxRequestHeader = "HX-Request"

// SessionLoader — middleware, читающий сессию из Store и
// помещающий её в контекст запроса.
type SessionLoader struct {
	store  auth.Store
	logger *slog.Logger
}

// NewSessionLoader создаёт новый SessionLoader.
func NewSessionLoader(store auth.Store, logger *slog.Logger) *SessionLoader {
	return &SessionLoader{
		store:  store,
		logger: logger.With(slog.String("component", "ui_session_middleware")),
	}
}

// Middleware возвращает HTTP middleware загрузки сессии.
// Отсутствующая или повреждённая cookie даёт пустую сессию;
// 500 — только при сбое хранилища.
func (sl *SessionLoader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sl.store.Load(r)
			if err != nil {
				sl.logger.Error("Ошибка чтения UI-сессии",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				http.Error(w, "Ошибка чтения сессии", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession помещает сессию в контекст.
func WithSession(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, ContextKeyUISession, session)
}

// SessionFromContext извлекает сессию из контекста запроса.
// Возвращает пустую сессию, если запрос не прошёл через SessionLoader.
func SessionFromContext(ctx context.Context) model.Session {
	session, ok := ctx.Value(ContextKeyUISession).(model.Session)
	if !ok {
		return model.Session{}
	}
	return session
}

// TokenFromContext возвращает token сессии из контекста.
// Сигнатура совпадает с apiclient.TokenProvider.
func TokenFromContext(ctx context.Context) (string, bool) {
	session := SessionFromContext(ctx)
	if session.Token == "" {
		return "", false
	}
	return session.Token, true
}

// RequireRole возвращает middleware, пропускающий только сессию с ролью role.
// Иначе — 302 на путь из guard.Decide; обработчик маршрута не вызывается.
// Для HTMX-запросов вместо 302 отдаётся заголовок HX-Redirect,
// чтобы браузер перешёл на страницу целиком, а не вставил её во фрагмент.
func RequireRole(role rbac.Role) func(http.Handler) http.Handler {
	req := guard.RequireRole(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := guard.Decide(SessionFromContext(r.Context()), req)
			if decision.Render() {
				next.ServeHTTP(w, r)
				return
			}
			Redirect(w, r, decision.Redirect)
		})
	}
}

// Redirect перенаправляет браузер на target (302 или HX-Redirect для HTMX).
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if r.Header.Get(htmxRequestHeader) == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
