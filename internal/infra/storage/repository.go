package storage

import (
	"context"
	"errors"

	"github.com/vietddude/watchonly/internal/core/domain"
)

var (
	// ErrSnapshotNotFound is returned when nothing has been persisted yet
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// SnapshotStore persists and restores the full keyring snapshot.
type SnapshotStore interface {
	// Load retrieves the last saved snapshot
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *domain.Snapshot) error

	// Name identifies the store in logs and metrics
	Name() string

	// Close releases held resources
	Close() error
}
