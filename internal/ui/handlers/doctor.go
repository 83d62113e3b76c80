// doctor.go — страница врача: загрузка записи и поиск истории пациента.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/pages"
)

// DoctorBackend — операции backend для страницы врача.
type DoctorBackend interface {
	UploadRecord(ctx context.Context, req model.UploadRequest) (string, error)
	PatientHistory(ctx context.Context, patientID string) ([]model.HistoryRecord, error)
}

// DoctorHandler — обработчики страницы врача.
type DoctorHandler struct {
	backend DoctorBackend
	logger  *slog.Logger
}

// NewDoctorHandler создаёт новый DoctorHandler.
func NewDoctorHandler(backend DoctorBackend, logger *slog.Logger) *DoctorHandler {
	return &DoctorHandler{
		backend: backend,
		logger:  logger.With(slog.String("component", "ui.doctor")),
	}
}

// HandlePage — GET /doctor.
func (h *DoctorHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, pages.UploadPanelData{Result: model.Idle[string]()}, pages.SearchPanelData{
		Results: model.Idle[[]model.HistoryRecord](),
	})
}

// HandleUpload — POST /doctor/records.
// Запрос с некорректной формой не отправляется в backend.
// При успехе поля формы очищаются.
func (h *DoctorHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form := model.UploadRequest{
		PatientID: strings.TrimSpace(r.PostFormValue("patient_id")),
		Summary:   strings.TrimSpace(r.PostFormValue("problem_summary")),
		ReportURL: strings.TrimSpace(r.PostFormValue("report_url")),
	}

	panel := pages.UploadPanelData{Form: form}
	patient, err := h.upload(ctx, form)
	if err != nil {
		panel.Result = model.Failed[string](i18n.Tf(ctx, "doctor.upload.error_prefix", h.uploadErrorText(ctx, err)))
	} else {
		h.logger.Info("Запись загружена",
			slog.String("patient_id", patient),
			slog.String("doctor_id", uimiddleware.SessionFromContext(ctx).SubjectID),
		)
		panel = pages.UploadPanelData{Result: model.Succeeded(patient)}
	}

	if isHTMX(r) {
		render(w, r, h.logger, http.StatusOK, pages.UploadPanel(panel))
		return
	}
	h.renderPage(w, r, panel, pages.SearchPanelData{Results: model.Idle[[]model.HistoryRecord]()})
}

func (h *DoctorHandler) upload(ctx context.Context, form model.UploadRequest) (string, error) {
	if err := form.Validate(); err != nil {
		return "", err
	}
	patient, err := h.backend.UploadRecord(ctx, form)
	if err != nil {
		logBackendError(ctx, h.logger, "upload_record", err)
		return "", err
	}
	return patient, nil
}

// uploadErrorText — текст ошибки загрузки для пользователя.
func (h *DoctorHandler) uploadErrorText(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidPatientID), errors.Is(err, model.ErrEmptyPatientID):
		return i18n.T(ctx, "doctor.upload.invalid_id")
	case errors.Is(err, model.ErrEmptySummary):
		return i18n.T(ctx, "doctor.upload.empty_summary")
	}
	return backendMessage(ctx, err, "doctor.upload.failed")
}

// HandleSearch — GET /doctor/search?patient_id=.
// 404 backend — пустой результат («записей нет»), не ошибка.
func (h *DoctorHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := strings.TrimSpace(r.URL.Query().Get("patient_id"))

	search := pages.SearchPanelData{PatientID: patientID, Results: h.search(ctx, patientID)}
	if isHTMX(r) {
		render(w, r, h.logger, http.StatusOK, pages.SearchResults(search.PatientID, search.Results))
		return
	}
	h.renderPage(w, r, pages.UploadPanelData{Result: model.Idle[string]()}, search)
}

func (h *DoctorHandler) search(ctx context.Context, patientID string) model.State[[]model.HistoryRecord] {
	if patientID == "" {
		return model.Failed[[]model.HistoryRecord](i18n.T(ctx, "doctor.search.empty_id"))
	}
	records, err := h.backend.PatientHistory(ctx, patientID)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return model.Failed[[]model.HistoryRecord](i18n.T(ctx, "doctor.search.empty_id"))
		}
		logBackendError(ctx, h.logger, "patient_history", err)
		return model.Failed[[]model.HistoryRecord](i18n.T(ctx, "doctor.search.failed"))
	}
	return model.Succeeded(records)
}

func (h *DoctorHandler) renderPage(w http.ResponseWriter, r *http.Request, upload pages.UploadPanelData, search pages.SearchPanelData) {
	render(w, r, h.logger, http.StatusOK, pages.DoctorPage(pages.DoctorPageData{
		Session: uimiddleware.SessionFromContext(r.Context()),
		Upload:  upload,
		Search:  search,
	}))
}
