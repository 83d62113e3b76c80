package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// readinessTimeout — таймаут проверки доступности backend.
const readinessTimeout = 3 * time.Second

// Name возвращает имя проверки в ответе /health/ready.
func (c *Client) Name() string {
	return "backend"
}

// CheckReady проверяет, что backend отвечает по HTTP.
// Любой ответ ниже 500 — ok (маршрута проверки у backend может не быть),
// 5xx — degraded, сетевая ошибка — fail.
func (c *Client) CheckReady(ctx context.Context) (status, message string) {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return "fail", "ошибка создания запроса: " + err.Error()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "fail", fmt.Sprintf("backend недоступен: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "degraded", fmt.Sprintf("backend вернул статус %d", resp.StatusCode)
	}
	return "ok", fmt.Sprintf("backend отвечает, статус %d", resp.StatusCode)
}
