// Пакет handlers — HTTP-обработчики UI портала.
// Обработчики читают сессию из контекста (ui/middleware), выполняют не более
// одного запроса к backend и рендерят страницу или HTMX-фрагмент.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/apiclient"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

// isHTMX сообщает, что запрос отправлен HTMX и ждёт фрагмент.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// render пишет компонент со статусом status.
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logger.Error("Ошибка рендеринга страницы",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
}

// backendMessage возвращает текст ошибки backend для пользователя:
// поле msg ответа, иначе перевод fallbackKey.
func backendMessage(ctx context.Context, err error, fallbackKey string) string {
	if msg := apiclient.MessageOf(err); msg != "" {
		return msg
	}
	return i18n.T(ctx, fallbackKey)
}

// logBackendError журналирует неуспешный вызов backend без credential.
func logBackendError(ctx context.Context, logger *slog.Logger, op string, err error) {
	level := slog.LevelWarn
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && (apiErr.Kind == apiclient.KindServer || apiErr.Kind == apiclient.KindTransport) {
		level = slog.LevelError
	}
	logger.Log(ctx, level, "Ошибка запроса к backend",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
