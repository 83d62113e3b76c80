// loader.go — загрузка каталогов переводов из embed.FS.
package i18n

import (
	"fmt"
	"log/slog"
	"path"
)

// LoadFromEmbedFS загружает каталоги всех поддерживаемых языков
// (locales/<lang>.json) и предупреждает о непереведённых ключах.
func LoadFromEmbedFS(bundle *Bundle, logger *slog.Logger) error {
	for _, lang := range supported {
		file := path.Join("locales", lang+".json")
		data, err := LocaleFS.ReadFile(file)
		if err != nil {
			return fmt.Errorf("i18n: не удалось прочитать %s: %w", file, err)
		}
		if err := bundle.LoadMessages(lang, data); err != nil {
			return err
		}
	}

	for _, lang := range supported {
		if missing := bundle.MissingKeys(lang); len(missing) > 0 {
			logger.Warn("i18n: в каталоге нет переводов",
				slog.String("lang", lang),
				slog.Any("keys", missing),
			)
		}
	}

	logger.Info("i18n каталоги загружены", slog.Int("languages", len(supported)))
	return nil
}
