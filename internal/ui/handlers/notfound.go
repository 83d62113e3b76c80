package handlers

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/pages"
)

// NotFoundHandler возвращает обработчик неизвестных путей: страница 404 без redirect.
func NotFoundHandler(logger *slog.Logger) http.HandlerFunc {
	logger = logger.With(slog.String("component", "ui.not_found"))
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Неизвестный путь", slog.String("path", r.URL.Path))
		page := pages.NotFound(uimiddleware.SessionFromContext(r.Context()))
		templ.Handler(page, templ.WithStatus(http.StatusNotFound)).ServeHTTP(w, r)
	}
}
