package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
)

// displayDateLayout — дата визита без времени.
const displayDateLayout = "2006-01-02"

// recordCard пишет карточку записи истории. number > 0 — порядковый номер
// в истории пациента; 0 — без заголовка (результаты поиска врача).
func recordCard(hw *htmlWriter, rec model.HistoryRecord, number int) {
	hw.raw(`<article class="record"`)
	if rec.ID != "" {
		hw.attr("id", "record-"+rec.ID)
	}
	hw.raw(`>`)
	if number > 0 {
		hw.raw(`<h3>`)
		hw.tf("record.number", number)
		hw.raw(`</h3>`)
	}

	hw.raw(`<p><strong>`)
	hw.t("record.date")
	hw.raw(`:</strong> `)
	if rec.Date.IsZero() {
		hw.t("record.date_unknown")
	} else {
		hw.raw(`<time`)
		hw.attr("datetime", rec.Date.Format(displayDateLayout))
		hw.raw(`>`)
		hw.text(rec.Date.Format(displayDateLayout))
		hw.raw(`</time>`)
	}
	hw.raw(`</p>`)

	hw.raw(`<p><strong>`)
	hw.t("record.doctor")
	hw.raw(`:</strong> `)
	hw.text(rec.AuthorDoctorID)
	hw.raw(`</p>`)

	hw.raw(`<p><strong>`)
	hw.t("record.summary")
	hw.raw(`:</strong><br>`)
	hw.text(rec.Summary)
	hw.raw(`</p>`)

	if rec.HasReport() {
		hw.raw(`<p><strong>`)
		hw.t("record.report")
		hw.raw(`:</strong> <a target="_blank" rel="noopener noreferrer"`)
		hw.attr("href", string(templ.URL(rec.ReportURL)))
		hw.raw(`>`)
		hw.t("record.report_link")
		hw.raw(`</a></p>`)
	}
	hw.raw(`</article>`)
}

// historyList пишет записи в порядке ответа backend.
// Номер первой записи — len(records), последней — 1.
func historyList(hw *htmlWriter, records []model.HistoryRecord, numbered bool) {
	hw.raw(`<div class="history-list" data-count="` + strconv.Itoa(len(records)) + `">`)
	for i, rec := range records {
		number := 0
		if numbered {
			number = len(records) - i
		}
		recordCard(hw, rec, number)
	}
	hw.raw(`</div>`)
}
