// Пакет pages — HTML-компоненты UI портала (templ.Component).
// Страницы — чистые функции от данных: без обращений к backend и сессии.
package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
)

// MessageKind — оттенок сообщения пользователю.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageOK
	MessageError
	MessageWarn
)

// Message — строка обратной связи над формой.
type Message struct {
	Kind MessageKind
	Text string
}

// OK — сообщение об успехе.
func OK(text string) Message { return Message{Kind: MessageOK, Text: text} }

// Error — сообщение об ошибке.
func Error(text string) Message { return Message{Kind: MessageError, Text: text} }

// Warn — предупреждение: запрос выполнен, но показать нечего.
func Warn(text string) Message { return Message{Kind: MessageWarn, Text: text} }

// IsZero сообщает, что сообщения нет.
func (m Message) IsZero() bool { return m.Kind == MessageNone || m.Text == "" }

func (m Message) class() string {
	switch m.Kind {
	case MessageOK:
		return "msg msg-ok"
	case MessageError:
		return "msg msg-error"
	case MessageWarn:
		return "msg msg-warn"
	case MessageNone:
		return "msg"
	}
	return "msg"
}

// htmlWriter пишет HTML и запоминает первую ошибку записи.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func newWriter(ctx context.Context, w io.Writer) *htmlWriter {
	return &htmlWriter{ctx: ctx, w: w}
}

// raw пишет строку как есть.
func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

// text пишет экранированный текст.
func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// rawf пишет форматированную строку; аргументы должны быть уже безопасны.
func (hw *htmlWriter) rawf(format string, args ...any) {
	hw.raw(fmt.Sprintf(format, args...))
}

// attr пишет атрибут name="value" с экранированием значения.
func (hw *htmlWriter) attr(name, value string) {
	hw.rawf(` %s="%s"`, name, templ.EscapeString(value))
}

// t пишет экранированный перевод ключа.
func (hw *htmlWriter) t(key string) {
	hw.text(i18n.T(hw.ctx, key))
}

// tf пишет экранированный перевод с аргументами.
func (hw *htmlWriter) tf(key string, args ...any) {
	hw.text(i18n.Tf(hw.ctx, key, args...))
}

// component вставляет дочерний компонент.
func (hw *htmlWriter) component(c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(hw.ctx, hw.w)
}

// message пишет блок сообщения (пустой блок, если сообщения нет).
func (hw *htmlWriter) message(id string, m Message) {
	hw.raw(`<p`)
	hw.attr("id", id)
	hw.attr("class", m.class())
	hw.raw(`>`)
	if !m.IsZero() {
		hw.text(m.Text)
	}
	hw.raw(`</p>`)
}

// inputLabel возвращает перевод для атрибута (экранирует attr).
func inputLabel(hw *htmlWriter, key string) string {
	return i18n.T(hw.ctx, key)
}
