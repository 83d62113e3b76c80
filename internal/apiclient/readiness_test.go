package apiclient

import (
	"context"
	"net/http"
	"testing"
)

func TestClient_CheckReady(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{name: "ok", status: http.StatusOK, want: "ok"},
		{name: "нет маршрута проверки", status: http.StatusNotFound, want: "ok"},
		{name: "ошибка сервера", status: http.StatusBadGateway, want: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := setupMockBackend(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			})
			c := newTestClient(t, srv.URL, nil)
			if status, msg := c.CheckReady(context.Background()); status != tt.want {
				t.Errorf("status = %q (%s), ожидается %q", status, msg, tt.want)
			}
		})
	}
}

func TestClient_CheckReady_Unreachable(t *testing.T) {
	srv := setupMockBackend(t, func(http.ResponseWriter, *http.Request) {})
	c := newTestClient(t, srv.URL, nil)
	srv.Close()

	if status, _ := c.CheckReady(context.Background()); status != "fail" {
		t.Errorf("status = %q, ожидается fail", status)
	}
	if c.Name() != "backend" {
		t.Errorf("Name() = %q", c.Name())
	}
}
