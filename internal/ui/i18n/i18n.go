// Пакет i18n — интернационализация UI портала.
// Страницы получают строки через T(ctx, key) и Tf(ctx, key, args...);
// язык берётся из контекста запроса (см. Middleware).
// Поддерживаемые языки: English (en), Русский (ru). Язык по умолчанию — en.
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// Коды поддерживаемых языков.
const (
	LangEnglish = "en"
	LangRussian = "ru"
	// DefaultLang — язык, если ни cookie, ни Accept-Language не подошли.
	DefaultLang = LangEnglish
)

var (
	// supported — коды языков в порядке тегов для matcher (первый — язык по умолчанию).
	supported = []string{LangEnglish, LangRussian}

	matcher = language.NewMatcher([]language.Tag{
		language.English,
		language.Russian,
	})
)

// contextKey — тип ключа для контекста (избегаем коллизий).
type contextKey string

const contextKeyLang contextKey = "i18n_lang"

// Bundle — каталоги переводов всех языков: lang → key → строка.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[string]map[string]string
	logger   *slog.Logger
}

// NewBundle создаёт пустой Bundle.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		catalogs: make(map[string]map[string]string),
		logger:   logger,
	}
}

// LoadMessages загружает плоский JSON-каталог {"key": "строка"} для языка lang.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	if !IsSupported(lang) {
		return fmt.Errorf("i18n: язык %q не поддерживается", lang)
	}
	var messages map[string]string
	if err := json.Unmarshal(data, &messages); err != nil {
		return fmt.Errorf("i18n: ошибка парсинга каталога %s: %w", lang, err)
	}

	b.mu.Lock()
	b.catalogs[lang] = messages
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(messages)),
		)
	}
	return nil
}

// Translate возвращает строку по ключу. Порядок поиска: lang, затем
// язык по умолчанию; если ключа нет нигде — сам ключ.
func (b *Bundle) Translate(lang, key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.catalogs[lang][key]; ok {
		return msg
	}
	if msg, ok := b.catalogs[DefaultLang][key]; ok {
		return msg
	}
	return key
}

// Translatef — Translate с подстановкой аргументов.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	template := b.Translate(lang, key)
	if len(args) == 0 {
		return template
	}
	return formatFunc(template, args...)
}

// MissingKeys возвращает ключи языка по умолчанию, которых нет в каталоге lang.
func (b *Bundle) MissingKeys(lang string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var missing []string
	for key := range b.catalogs[DefaultLang] {
		if _, ok := b.catalogs[lang][key]; !ok {
			missing = append(missing, key)
		}
	}
	slices.Sort(missing)
	return missing
}

// --- Bundle процесса ---

var (
	activeMu     sync.RWMutex
	activeBundle *Bundle
)

// SetActive делает bundle источником строк для T и Tf.
// Вызывается один раз при старте (и в тестах).
func SetActive(bundle *Bundle) {
	activeMu.Lock()
	activeBundle = bundle
	activeMu.Unlock()
}

func active() *Bundle {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeBundle
}

// WithLang помещает язык в контекст.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, contextKeyLang, lang)
}

// LangFromContext извлекает язык из контекста. По умолчанию — DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(contextKeyLang).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// T возвращает перевод по ключу на языке из контекста.
func T(ctx context.Context, key string) string {
	b := active()
	if b == nil {
		return key
	}
	return b.Translate(LangFromContext(ctx), key)
}

// Tf — T с подстановкой аргументов.
func Tf(ctx context.Context, key string, args ...any) string {
	b := active()
	if b == nil {
		if len(args) == 0 {
			return key
		}
		return formatFunc(key, args...)
	}
	return b.Translatef(LangFromContext(ctx), key, args...)
}

// formatFunc — fmt.Sprintf через переменную: формат-строки приходят из
// JSON-каталогов, printf-проверка go vet к ним неприменима.
//
//nolint:govet // обход go vet printf-анализатора
var formatFunc = fmt.Sprintf

// IsSupported сообщает, поддерживается ли язык.
func IsSupported(lang string) bool {
	return slices.Contains(supported, lang)
}

// Supported возвращает коды поддерживаемых языков.
func Supported() []string {
	return slices.Clone(supported)
}

// MatchLanguage выбирает язык по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, index, confidence := matcher.Match(parseAccept(acceptLanguage)...)
	if confidence == language.No {
		return DefaultLang
	}
	return supported[index]
}

// parseAccept разбирает Accept-Language; некорректный заголовок — пустой список.
func parseAccept(acceptLanguage string) []language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		return nil
	}
	return tags
}
