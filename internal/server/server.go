// Пакет server — HTTP-сервер Portal Module с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на ingress.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	apihandlers "github.com/bigkaa/medhistory/portal-module/internal/api/handlers"
	"github.com/bigkaa/medhistory/portal-module/internal/api/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/config"
	"github.com/bigkaa/medhistory/portal-module/internal/domain/rbac"
	uihandlers "github.com/bigkaa/medhistory/portal-module/internal/ui/handlers"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/i18n"
	uimiddleware "github.com/bigkaa/medhistory/portal-module/internal/ui/middleware"
	"github.com/bigkaa/medhistory/portal-module/internal/ui/static"
)

// Components — обработчики, из которых собирается роутер портала.
type Components struct {
	Health   *apihandlers.HealthHandler
	Sessions *uimiddleware.SessionLoader
	Auth     *uihandlers.AuthHandler
	Patient  *uihandlers.PatientHandler
	Doctor   *uihandlers.DoctorHandler
}

// Server — HTTP-сервер Portal Module.
type Server struct {
	httpServer      *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New создаёт HTTP-сервер портала с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, c Components) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, c),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer:      srv,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// NewStandalone оборачивает готовый handler (fake backend) в сервер
// с тем же graceful shutdown.
func NewStandalone(addr string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// NewRouter собирает chi-роутер портала.
//
// Маршруты:
//   - /health/live, /health/ready, /metrics — без сессии
//   - /static/* — встроенные CSS
//   - /, /login, /register, /logout, /set-language, /dashboard — публичные
//   - /patient/* — только роль Patient
//   - /doctor/* — только роль Doctor
//
// Неизвестный путь — страница 404.
func NewRouter(logger *slog.Logger, c Components) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// NotFound задаётся до маршрутов: подроутеры /patient и /doctor
	// наследуют его при монтировании.
	// Страница 404 показывает кнопку выхода, поэтому сессия нужна и здесь.
	notFound := i18n.Middleware()(c.Sessions.Middleware()(uihandlers.NotFoundHandler(logger)))
	router.NotFound(notFound.ServeHTTP)
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	// Health и metrics проверяются Kubernetes напрямую.
	router.Get("/health/live", c.Health.HealthLive)
	router.Get("/health/ready", c.Health.HealthReady)
	router.Get("/metrics", c.Health.GetMetrics)

	router.Handle("/static/*", static.Handler("/static/"))

	router.Group(func(r chi.Router) {
		r.Use(i18n.Middleware())
		r.Use(c.Sessions.Middleware())

		r.Get("/", c.Auth.HandleIndex)
		r.Post("/login", c.Auth.HandleLogin)
		r.Post("/register", c.Auth.HandleRegister)
		r.Post("/logout", c.Auth.HandleLogout)
		r.Post("/set-language", uihandlers.HandleSetLanguage)
		r.Get("/dashboard", uihandlers.HandleDashboard)

		r.Route("/patient", func(r chi.Router) {
			r.Use(uimiddleware.RequireRole(rbac.RolePatient))
			r.Get("/", c.Patient.HandlePage)
			r.Get("/history", c.Patient.HandleHistory)
		})

		r.Route("/doctor", func(r chi.Router) {
			r.Use(uimiddleware.RequireRole(rbac.RoleDoctor))
			r.Get("/", c.Doctor.HandlePage)
			r.Post("/records", c.Doctor.HandleUpload)
			r.Get("/search", c.Doctor.HandleSearch)
		})

	})

	return router
}

// Handler возвращает корневой HTTP-обработчик (для тестов).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
