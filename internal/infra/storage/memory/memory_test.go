package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/infra/storage"
)

func TestSnapshotStore(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()

	if _, err := s.Load(ctx); !errors.Is(err, storage.ErrSnapshotNotFound) {
		t.Fatalf("Expected ErrSnapshotNotFound, got %v", err)
	}

	snap := &domain.Snapshot{Accounts: []domain.Account{domain.NewWatchOnlyAccount("0xabc", "A")}}
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Mutating the saved value must not reach the store.
	snap.Accounts[0].Options.Label = "changed"

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Len() != 1 || got.Accounts[0].Label() != "A" {
		t.Errorf("Unexpected snapshot: %+v", got)
	}
	if s.Saves() != 1 {
		t.Errorf("Expected 1 save, got %d", s.Saves())
	}
}

// persistCount reads watchonly_snapshot_persist_total for the memory store.
func persistCount(t *testing.T, result string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "watchonly_snapshot_persist_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["store"] == "memory" && labels["result"] == result {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestSnapshotStore_RecordsPersistMetrics(t *testing.T) {
	ctx := context.Background()
	s := NewSnapshotStore()
	before := persistCount(t, "ok")

	for i := 0; i < 2; i++ {
		if err := s.Save(ctx, &domain.Snapshot{}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	if got := persistCount(t, "ok") - before; got != 2 {
		t.Errorf("Expected 2 recorded persists, got %v", got)
	}
}
