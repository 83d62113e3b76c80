// Пакет static — встроенные статические ресурсы UI портала (CSS).
// Раздаются по /static/*.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/output.css
var content embed.FS

// FileSystem возвращает http.FileSystem для обработки запросов к /static/*.
// Файлы доступны по путям вида /static/css/output.css.
func FileSystem() http.FileSystem {
	return http.FS(content)
}

// Handler раздаёт встроенные файлы; prefix отрезается от пути запроса.
func Handler(prefix string) http.Handler {
	return http.StripPrefix(prefix, http.FileServer(FileSystem()))
}
