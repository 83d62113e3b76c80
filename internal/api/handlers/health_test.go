package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	name, status, message string
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) CheckReady(context.Context) (string, string) { return s.status, s.message }

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler().HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthLiveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Service != "portal-module" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []ReadinessChecker
		wantStatus string
		wantCode   int
	}{
		{
			name:       "без зависимостей",
			wantStatus: "ok",
			wantCode:   http.StatusOK,
		},
		{
			name:       "всё доступно",
			checkers:   []ReadinessChecker{stubChecker{"backend", "ok", ""}, stubChecker{"postgresql", "ok", ""}},
			wantStatus: "ok",
			wantCode:   http.StatusOK,
		},
		{
			name:       "backend деградировал",
			checkers:   []ReadinessChecker{stubChecker{"backend", "degraded", "502"}},
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
		},
		{
			name:       "postgres недоступен",
			checkers:   []ReadinessChecker{stubChecker{"backend", "degraded", ""}, stubChecker{"postgresql", "fail", "down"}},
			wantStatus: "fail",
			wantCode:   http.StatusServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewHealthHandler(tt.checkers...).HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, ожидается %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, ожидается %q", resp.Status, tt.wantStatus)
			}
			if len(resp.Checks) != len(tt.checkers) {
				t.Errorf("checks = %+v", resp.Checks)
			}
		})
	}
}
