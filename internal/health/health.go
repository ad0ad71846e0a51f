// Package health serves keyring health, metrics and the account list over HTTP.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/watchonly/internal/control"
	"github.com/vietddude/watchonly/internal/core/metrics"
)

// DefaultCacheTTL bounds how often the store is actually checked.
const DefaultCacheTTL = 10 * time.Second

// Checker produces a fresh health status.
type Checker interface {
	Health(ctx context.Context) control.HealthStatus
}

// Monitor caches store health checks and keeps the store_up gauge current.
type Monitor struct {
	checker Checker
	ttl     time.Duration
	log     *slog.Logger

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport control.HealthStatus
	checked    bool
}

// NewMonitor creates a new health monitor.
func NewMonitor(checker Checker, ttl time.Duration, log *slog.Logger) *Monitor {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{checker: checker, ttl: ttl, log: log}
}

// CheckHealth returns the cached status, probing the store when it is stale.
func (m *Monitor) CheckHealth(ctx context.Context) control.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.checked && time.Since(m.lastCheck) < m.ttl {
		return m.lastReport
	}
	return m.refresh(ctx)
}

// Run checks the store every ttl until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			m.refresh(ctx)
			m.mu.Unlock()
		}
	}
}

// refresh must be called with m.mu held.
func (m *Monitor) refresh(ctx context.Context) control.HealthStatus {
	report := m.checker.Health(ctx)

	if m.checked && m.lastReport.Healthy != report.Healthy {
		if report.Healthy {
			m.log.Info("Snapshot store recovered", "store", report.Store)
		} else {
			m.log.Warn("Snapshot store unhealthy", "store", report.Store, "error", report.Error)
		}
	}

	up := 0.0
	if report.Healthy {
		up = 1
	}
	metrics.StoreUp.WithLabelValues(report.Store).Set(up)

	m.lastCheck = time.Now()
	m.lastReport = report
	m.checked = true
	return report
}
