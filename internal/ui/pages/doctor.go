package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

// Маршруты форм страницы врача.
const (
	DoctorUploadPath = "/doctor/records"
	DoctorSearchPath = "/doctor/search"
)

// UploadPanelData — форма загрузки записи и результат последней попытки.
type UploadPanelData struct {
	// Form — значения полей; после успешной загрузки пустые.
	Form model.UploadRequest
	// Result — Succeeded(patient id) или Failed(сообщение).
	Result model.State[string]
}

// SearchPanelData — поиск истории пациента.
type SearchPanelData struct {
	PatientID string
	Results   model.State[[]model.HistoryRecord]
}

// DoctorPageData — данные страницы врача.
type DoctorPageData struct {
	Session model.Session
	Upload  UploadPanelData
	Search  SearchPanelData
}

// DoctorPage — страница врача: загрузка записи и поиск истории пациента.
func DoctorPage(data DoctorPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<h2>`)
		hw.tf("doctor.title", data.Session.SubjectID)
		hw.raw(`</h2>`)
		hw.component(UploadPanel(data.Upload))
		hw.component(SearchPanel(data.Search))
		return hw.err
	})
	return Layout(LayoutData{TitleKey: "doctor.upload.title", Session: data.Session}, body)
}

// UploadPanel — фрагмент формы загрузки. HTMX заменяет его целиком ответом POST.
func UploadPanel(data UploadPanelData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<section class="card" id="upload-panel"><h3>`)
		hw.t("doctor.upload.title")
		hw.raw(`</h3>`)

		var msg Message
		switch data.Result.Kind() {
		case model.StateSucceeded:
			patient, _ := data.Result.Value()
			msg = OK(i18n.Tf(ctx, "doctor.upload.success", patient))
		case model.StateFailed:
			msg = Error(data.Result.Reason())
		case model.StateIdle, model.StateLoading:
		}
		hw.message("upload-message", msg)

		hw.raw(`<form method="post" class="form" hx-target="#upload-panel" hx-swap="outerHTML"`)
		hw.attr("action", DoctorUploadPath)
		hw.attr("hx-post", DoctorUploadPath)
		hw.raw(`>`)

		hw.raw(`<input type="text" name="patient_id" required`)
		hw.attr("placeholder", inputLabel(hw, "doctor.upload.patient_id"))
		hw.attr("value", data.Form.PatientID)
		hw.raw(`>`)

		hw.raw(`<textarea name="problem_summary" required`)
		hw.attr("placeholder", inputLabel(hw, "doctor.upload.summary"))
		hw.raw(`>`)
		hw.text(data.Form.Summary)
		hw.raw(`</textarea>`)

		hw.raw(`<input type="url" name="report_url"`)
		hw.attr("placeholder", inputLabel(hw, "doctor.upload.report_url"))
		hw.attr("value", data.Form.ReportURL)
		hw.raw(`>`)

		hw.raw(`<button type="submit" class="btn">`)
		hw.t("doctor.upload.submit")
		hw.raw(`</button><span class="htmx-indicator muted">`)
		hw.t("doctor.upload.uploading")
		hw.raw(`</span></form></section>`)
		return hw.err
	})
}

// SearchPanel — форма поиска и блок результатов.
func SearchPanel(data SearchPanelData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<section class="card" id="search-panel"><h3>`)
		hw.t("doctor.search.title")
		hw.raw(`</h3>`)

		hw.raw(`<form method="get" class="form-inline" hx-target="#search-results" hx-swap="outerHTML" hx-indicator="#search-indicator"`)
		hw.attr("action", DoctorSearchPath)
		hw.attr("hx-get", DoctorSearchPath)
		hw.raw(`><input type="text" name="patient_id" required`)
		hw.attr("placeholder", inputLabel(hw, "doctor.search.placeholder"))
		hw.attr("value", data.PatientID)
		hw.raw(`><button type="submit" class="btn">`)
		hw.t("doctor.search.submit")
		hw.raw(`</button></form>`)

		hw.raw(`<p id="search-indicator" class="htmx-indicator muted">`)
		hw.t("doctor.search.searching")
		hw.raw(`</p>`)

		hw.component(SearchResults(data.PatientID, data.Results))
		hw.raw(`</section>`)
		return hw.err
	})
}

// SearchResults — фрагмент результатов поиска как функция состояния.
// Пустой успешный результат (в том числе 404 backend) — «записей нет», не ошибка.
func SearchResults(patientID string, state model.State[[]model.HistoryRecord]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<div id="search-results"`)
		hw.attr("data-state", state.Kind().String())
		hw.raw(`>`)

		switch state.Kind() {
		case model.StateIdle:
		case model.StateLoading:
			hw.raw(`<p class="muted">`)
			hw.t("doctor.search.searching")
			hw.raw(`</p>`)
		case model.StateFailed:
			hw.message("search-message", Error(state.Reason()))
		case model.StateSucceeded:
			records, _ := state.Value()
			hw.raw(`<h4>`)
			hw.tf("doctor.search.results", patientID, len(records))
			hw.raw(`</h4>`)
			if len(records) == 0 {
				hw.message("search-message", Warn(i18n.T(hw.ctx, "doctor.search.no_records")))
			} else {
				historyList(hw, records, false)
			}
		}
		hw.raw(`</div>`)
		return hw.err
	})
}
