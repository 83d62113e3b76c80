package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики списка отзыва.
var (
	revocationHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm_session_revocation_hits_total",
		Help: "Количество предъявленных cookie отозванных сессий.",
	})
	revocationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pm_session_revocations_total",
		Help: "Количество отозванных сессий (logout, повторный вход).",
	})
)

// RevocationList — in-memory список отозванных id сессий.
// Размер не ограничен: запись не вытесняется, пока копия cookie
// ещё может быть принята. TTL равен ограничению срока жизни сессии,
// после него cookie отвергается по IssuedAt; ttl 0 — записи не истекают.
// Список per-instance и не переживает рестарт.
type RevocationList struct {
	cache *expirable.LRU[string, struct{}]
}

// NewRevocationList создаёт список отзыва с временем жизни записи ttl.
func NewRevocationList(ttl time.Duration) *RevocationList {
	if ttl < 0 {
		ttl = 0
	}
	// size 0 — без вытеснения по размеру.
	return &RevocationList{cache: expirable.NewLRU[string, struct{}](0, nil, ttl)}
}

// Revoke добавляет id сессии в список.
func (l *RevocationList) Revoke(sid string) {
	if sid == "" {
		return
	}
	l.cache.Add(sid, struct{}{})
	revocationsTotal.Inc()
}

// IsRevoked сообщает, отозвана ли сессия.
func (l *RevocationList) IsRevoked(sid string) bool {
	if _, ok := l.cache.Get(sid); ok {
		revocationHitsTotal.Inc()
		return true
	}
	return false
}

// Len возвращает количество записей.
func (l *RevocationList) Len() int {
	return l.cache.Len()
}
