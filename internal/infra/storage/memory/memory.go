package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
	"github.com/vietddude/watchonly/internal/infra/storage"
)

// SnapshotStore keeps the encoded snapshot in process memory. Encoding on
// save gives callers the same isolation a real backend would.
type SnapshotStore struct {
	data  []byte
	saves int
	mu    sync.RWMutex
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(s.Name(), "load").Observe(time.Since(start).Seconds())
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, storage.ErrSnapshotNotFound
	}
	return domain.DecodeSnapshot(s.data)
}

func (s *SnapshotStore) Save(ctx context.Context, snapshot *domain.Snapshot) (err error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(s.Name(), "save").Observe(time.Since(start).Seconds())
		metrics.SnapshotPersists.WithLabelValues(s.Name(), metrics.Result(err)).Inc()
	}()

	data, err := domain.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.saves++
	return nil
}

// Raw returns the encoded snapshot, or nil before the first save.
func (s *SnapshotStore) Raw() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]byte(nil), s.data...)
}

// Saves returns the number of successful saves.
func (s *SnapshotStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *SnapshotStore) Name() string {
	return "memory"
}

func (s *SnapshotStore) Close() error {
	return nil
}
