// patient.go — страница пациента и фрагмент его истории.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/pages"
)

// PatientBackend — операции backend для страницы пациента.
type PatientBackend interface {
	MyHistory(ctx context.Context) ([]model.HistoryRecord, error)
}

// PatientHandler — обработчики страницы пациента.
type PatientHandler struct {
	backend PatientBackend
	logger  *slog.Logger
}

// NewPatientHandler создаёт новый PatientHandler.
func NewPatientHandler(backend PatientBackend, logger *slog.Logger) *PatientHandler {
	return &PatientHandler{
		backend: backend,
		logger:  logger.With(slog.String("component", "ui.patient")),
	}
}

// HandlePage — GET /patient. Каркас страницы; история в состоянии Loading
// загружается фрагментом /patient/history.
func (h *PatientHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.logger, http.StatusOK, pages.PatientPage(pages.PatientPageData{
		Session: uimiddleware.SessionFromContext(r.Context()),
		History: model.Loading[[]model.HistoryRecord](),
	}))
}

// HandleHistory — GET /patient/history. Фрагмент для HTMX или,
// без HTMX, страница целиком с уже загруженной историей.
// Ошибка backend (в том числе 401) показывается, сессия не очищается.
func (h *PatientHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	state := h.loadHistory(r.Context())
	if isHTMX(r) {
		render(w, r, h.logger, http.StatusOK, pages.PatientHistory(state))
		return
	}
	render(w, r, h.logger, http.StatusOK, pages.PatientPage(pages.PatientPageData{
		Session: uimiddleware.SessionFromContext(r.Context()),
		History: state,
	}))
}

func (h *PatientHandler) loadHistory(ctx context.Context) model.State[[]model.HistoryRecord] {
	records, err := h.backend.MyHistory(ctx)
	if err != nil {
		logBackendError(ctx, h.logger, "my_history", err)
		return model.Failed[[]model.HistoryRecord](i18n.T(ctx, "patient.load_failed"))
	}
	return model.Succeeded(records)
}
