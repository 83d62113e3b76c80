package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

// PatientHistoryPath — фрагмент истории, который страница пациента загружает через HTMX.
const PatientHistoryPath = "/patient/history"

// PatientPageData — данные страницы пациента.
type PatientPageData struct {
	Session model.Session
	// History — состояние истории при первом рендере (обычно Loading).
	History model.State[[]model.HistoryRecord]
}

// PatientPage — страница пациента с его идентификатором и историей.
func PatientPage(data PatientPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<section class="card"><h2>`)
		hw.t("patient.title")
		hw.raw(`</h2><p class="msg">`)
		hw.tf("patient.unique_id", data.Session.SubjectID)
		hw.raw(`</p>`)
		hw.component(PatientHistory(data.History))
		hw.raw(`</section>`)
		return hw.err
	})
	return Layout(LayoutData{TitleKey: "patient.title", Session: data.Session}, body)
}

// PatientHistory — фрагмент истории пациента как функция состояния загрузки.
// В состоянии Loading фрагмент сам запрашивает себя через HTMX.
func PatientHistory(state model.State[[]model.HistoryRecord]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<div id="history"`)
		hw.attr("data-state", state.Kind().String())

		switch state.Kind() {
		case model.StateIdle, model.StateLoading:
			hw.attr("hx-get", PatientHistoryPath)
			hw.raw(` hx-trigger="load" hx-swap="outerHTML"><p class="muted">`)
			hw.t("patient.loading")
			hw.raw(`</p>`)
		case model.StateFailed:
			hw.raw(`>`)
			hw.message("history-message", Error(state.Reason()))
		case model.StateSucceeded:
			hw.raw(`>`)
			records, _ := state.Value()
			if len(records) == 0 {
				hw.message("history-message", Warn(i18n.T(hw.ctx, "patient.empty")))
			} else {
				historyList(hw, records, true)
			}
		}
		hw.raw(`</div>`)
		return hw.err
	})
}
