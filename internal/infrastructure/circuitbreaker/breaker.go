package circuitbreaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"paygate-backend/pkg/logger"
)

// Manager hands out one circuit breaker per webhook destination URL.
// A flapping receiver trips only its own breaker; deliveries to other
// destinations are unaffected.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewManager() *Manager {
	return &Manager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Get returns the breaker for a destination, creating it on first use.
func (m *Manager) Get(url string) *gobreaker.CircuitBreaker {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cb, ok := m.breakers[url]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed", map[string]interface{}{
				"url":  name,
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})

	m.breakers[url] = cb
	return cb
}
