package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/domain/model"
)

// NotFound — конечная страница для неизвестных путей (без redirect).
func NotFound(session model.Session) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := newWriter(ctx, w)
		hw.raw(`<section class="card narrow" id="not-found"><h2>`)
		hw.t("notfound.title")
		hw.raw(`</h2><p>`)
		hw.t("notfound.message")
		hw.raw(`</p><a href="/dashboard">`)
		hw.t("notfound.home")
		hw.raw(`</a></section>`)
		return hw.err
	})
	return Layout(LayoutData{TitleKey: "notfound.title", Session: session}, body)
}
