// Точка входа Portal Module — веб-клиент истории болезни.
// Загружает конфигурацию, настраивает хранилище сессий (cookie или PostgreSQL),
// создаёт клиент backend, UI handlers и мониторинг зависимостей,
// запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/medhistory/portal-module/internal/api/handlers"
	"github.com/bigkaa/medhistory/portal-module/internal/apiclient"
	"github.com/bigkaa/medhistory/portal-module/internal/config"
	"github.com/bigkaa/medhistory/portal-module/internal/database"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/lifecycle"
	"github.com/bigkaa/medhistory/portal-module/internal/repository"
	"github.com/bigkaa/medhistory/portal-module/internal/server"
	"github.com/bigkaa/medhistory/portal-module/internal/service"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/auth"
	uihandlers "github.com/bigkaa/medhistory/portal-module/internal/ui/handlers"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Portal Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("session_store", cfg.SessionStore),
	)

	// Предупреждения о дефолтных значениях topologymetrics
	if os.Getenv("PM_DEPHEALTH_GROUP") == "" {
		logger.Warn("PM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Каталоги переводов UI
	bundle := i18n.NewBundle(logger)
	if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
		logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
		os.Exit(1)
	}
	i18n.SetActive(bundle)

	// 4. Клиент backend. Token берётся из сессии в контексте запроса.
	backend, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.BackendURL,
		Timeout:    cfg.BackendTimeout,
		CACertPath: cfg.BackendCACertPath,
	}, uimiddleware.TokenFromContext, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента backend", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Клиент backend создан",
		slog.String("backend_url", backend.BaseURL()),
		slog.Duration("timeout", cfg.BackendTimeout),
	)

	// 5. Шифрование session cookie (AES-256-GCM)
	codec, err := auth.NewCookieCodec(cfg.SessionSecret)
	if err != nil {
		logger.Error("Ошибка создания шифра сессий", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("PM_SESSION_SECRET не задан, сессии не переживают рестарт")
	}
	cookieOpts := auth.CookieOptions{
		Secure: cfg.SessionSecureCookie,
		MaxAge: cfg.SessionMaxAge,
	}

	// 6. Хранилище сессий
	ctx := context.Background()
	checkers := []handlers.ReadinessChecker{backend}
	var (
		store auth.Store
		pgDB  *sql.DB
	)
	if cfg.UsesPostgres() {
		// 6.1 Миграции и пул PostgreSQL
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
			os.Exit(1)
		}
		pool, err := database.Connect(ctx, cfg, logger)
		if err != nil {
			logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		// 6.2 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
		pgDB = stdlib.OpenDBFromPool(pool)
		defer pgDB.Close()

		store = auth.NewPostgresStore(codec, cookieOpts, repository.NewPortalSessionRepository(pool), logger)
		checkers = append(checkers, database.NewReadinessChecker(pool))
	} else {
		revoked := auth.NewRevocationList(cfg.SessionMaxAge)
		store = auth.NewCookieStore(codec, cookieOpts, revoked, logger)
	}

	// 7. UI handlers
	tracker := lifecycle.NewTracker(logger)
	components := server.Components{
		Health:   handlers.NewHealthHandler(checkers...),
		Sessions: uimiddleware.NewSessionLoader(store, logger),
		Auth:     uihandlers.NewAuthHandler(backend, store, tracker, logger),
		Patient:  uihandlers.NewPatientHandler(backend, logger),
		Doctor:   uihandlers.NewDoctorHandler(backend, logger),
	}

	// 8. topologymetrics — мониторинг зависимостей (backend + PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     "portal-module",
		Group:         cfg.DephealthGroup,
		BackendURL:    cfg.BackendURL,
		DB:            pgDB,
		PGConnURL:     cfg.DatabaseURL(),
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 9. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, components)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Portal Module остановлен")
}
