// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Portal Module мониторит:
//   - backend истории болезни — HTTP checker (critical)
//   - PostgreSQL — SQL checker через существующий pgxpool (только postgres-режим сессий, critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // HTTP checker для backend
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// Имена зависимостей в метриках.
const (
	DependencyBackend  = "health-backend"
	DependencyPostgres = "postgresql"
)

// DephealthConfig — параметры мониторинга зависимостей.
type DephealthConfig struct {
	// ServiceID — имя вершины графа текущего приложения.
	ServiceID string
	// Group — имя группы в метриках (PM_DEPHEALTH_GROUP).
	Group string
	// BackendURL — базовый URL backend.
	BackendURL string
	// BackendHealthPath — путь проверки backend.
	BackendHealthPath string
	// DB — *sql.DB из pgxpool (stdlib.OpenDBFromPool); nil — PostgreSQL не мониторится.
	DB *sql.DB
	// PGConnURL — URL PostgreSQL без пароля (для лейблов).
	PGConnURL string
	// CheckInterval — интервал проверки (PM_DEPHEALTH_CHECK_INTERVAL).
	CheckInterval time.Duration
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(cfg DephealthConfig, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(cfg, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(cfg DephealthConfig, logger *slog.Logger, registerer prometheus.Registerer) (*DephealthService, error) {
	return newDephealthService(cfg, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(cfg DephealthConfig, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	if cfg.BackendURL == "" {
		return nil, errors.New("dephealth: не задан URL backend")
	}

	deps := []string{DependencyBackend}
	opts := []dephealth.Option{
		dephealth.WithLogger(logger),
		dephealth.HTTP(DependencyBackend,
			dephealth.FromURL(cfg.BackendURL),
			dephealth.WithHTTPHealthPath(backendHealthPath(cfg.BackendHealthPath)),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		),
	}

	// PostgreSQL — connection pool mode: проверка через тот же пул, что и сессии.
	if cfg.DB != nil {
		deps = append(deps, DependencyPostgres)
		opts = append(opts, dephealth.AddDependency(DependencyPostgres, dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(cfg.DB)),
			dephealth.FromURL(cfg.PGConnURL),
			dephealth.CheckInterval(cfg.CheckInterval),
			dephealth.Critical(true),
		))
	}
	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(cfg.ServiceID, cfg.Group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// backendHealthPath нормализует путь проверки: пустой — /health, ведущий слеш обязателен.
func backendHealthPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/health"
	}
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// Dependencies возвращает имена мониторируемых зависимостей.
func (ds *DephealthService) Dependencies() []string {
	return ds.deps
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен",
		slog.String("dependencies", strings.Join(ds.deps, ",")),
	)
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}
