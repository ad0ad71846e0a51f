package health

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/watchonly/internal/control"
)

type countingChecker struct {
	calls   int
	healthy bool
}

func (c *countingChecker) Health(ctx context.Context) control.HealthStatus {
	c.calls++
	return control.HealthStatus{Healthy: c.healthy, Store: "memory", CheckedAt: time.Now()}
}

func TestMonitor_CachesWithinTTL(t *testing.T) {
	checker := &countingChecker{healthy: true}
	m := NewMonitor(checker, time.Hour, nil)

	for i := 0; i < 3; i++ {
		if status := m.CheckHealth(context.Background()); !status.Healthy {
			t.Fatalf("Expected healthy status, got %+v", status)
		}
	}
	if checker.calls != 1 {
		t.Errorf("Expected 1 check within TTL, got %d", checker.calls)
	}
}

func TestMonitor_RefreshesWhenStale(t *testing.T) {
	checker := &countingChecker{healthy: true}
	m := NewMonitor(checker, time.Millisecond, nil)

	m.CheckHealth(context.Background())
	time.Sleep(5 * time.Millisecond)
	checker.healthy = false

	if status := m.CheckHealth(context.Background()); status.Healthy {
		t.Error("Expected stale cache to be refreshed")
	}
	if checker.calls != 2 {
		t.Errorf("Expected 2 checks, got %d", checker.calls)
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := NewMonitor(&countingChecker{healthy: true}, time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
