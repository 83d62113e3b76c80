// Точка входа fake-backend — in-memory backend истории болезни
// для локальной разработки портала.
// Пользователи и записи живут только в памяти процесса.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/bigkaa/medhistory/portal-module/internal/apiclient/fakebackend"
	"github.com/bigkaa/medhistory/portal-module/internal/server"
)

func main() {
	// 1. Настройка логирования (текстовый формат — инструмент разработчика)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	// 2. Параметры из переменных окружения
	port := 5000
	if v := os.Getenv("FB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			logger.Error("FB_PORT: недопустимое значение", slog.String("value", v))
			os.Exit(1)
		}
		port = p
	}
	secret := os.Getenv("FB_JWT_SECRET")
	if secret == "" {
		logger.Warn("FB_JWT_SECRET не задан, токены недействительны после рестарта")
	}

	// 3. Fake backend
	fb, err := fakebackend.New(fakebackend.Options{Secret: []byte(secret)}, logger)
	if err != nil {
		logger.Error("Ошибка создания fake backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. HTTP-сервер с graceful shutdown
	srv := server.NewStandalone(fmt.Sprintf(":%d", port), fb.Handler(), 5*time.Second, logger)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
