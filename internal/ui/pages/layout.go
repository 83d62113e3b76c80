package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

// htmxScript — HTMX для фрагментов истории, загрузки записи и поиска.
const htmxScript = `<script src="https://unpkg.com/htmx.org@2.0.4"></script>`

// LayoutData — общие данные каркаса страницы.
type LayoutData struct {
	// TitleKey — ключ i18n заголовка страницы.
	TitleKey string
	// Session — текущая сессия (пустая для анонима).
	Session model.Session
}

// Layout — каркас страницы: шапка с выбором языка и кнопкой выхода.
// Кнопка «Logout (<роль>)» показывается только при активной сессии.
func Layout(data LayoutData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<!DOCTYPE html><html`)
		hw.attr("lang", i18n.LangFromContext(ctx))
		hw.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		if data.TitleKey != "" {
			hw.t(data.TitleKey)
			hw.raw(` · `)
		}
		hw.t("app.title")
		hw.raw(`</title><link rel="stylesheet" href="/static/css/output.css">`)
		hw.raw(htmxScript)
		hw.raw(`</head><body>`)

		hw.raw(`<header class="header"><h1><a href="/dashboard">`)
		hw.t("app.title")
		hw.raw(`</a></h1><div class="header-actions">`)
		languageSwitch(hw)
		if data.Session.IsComplete() {
			hw.raw(`<form method="post" action="/logout"><button type="submit" class="btn btn-secondary">`)
			hw.tf("nav.logout", data.Session.Role.String())
			hw.raw(`</button></form>`)
		}
		hw.raw(`</div></header>`)

		hw.raw(`<main class="container">`)
		hw.component(body)
		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

// languageSwitch — кнопки переключения языка.
func languageSwitch(hw *htmlWriter) {
	hw.raw(`<form method="post" action="/set-language" class="form-inline"`)
	hw.attr("aria-label", i18n.T(hw.ctx, "nav.language"))
	hw.raw(`>`)
	current := i18n.LangFromContext(hw.ctx)
	for _, lang := range i18n.Supported() {
		class := "btn-link"
		if lang == current {
			class = "btn-link muted"
		}
		hw.raw(`<button type="submit" name="lang"`)
		hw.attr("value", lang)
		hw.attr("class", class)
		hw.raw(`>`)
		hw.text(lang)
		hw.raw(`</button>`)
	}
	hw.raw(`</form>`)
}
