package file

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/vietddude/watchonly/internal/core/domain"
	"github.com/vietddude/watchonly/internal/core/metrics"
	"github.com/vietddude/watchonly/internal/infra/storage"
)

// Config holds file store settings.
type Config struct {
	Path string `yaml:"path"`
}

// SnapshotStore persists the snapshot as a JSON document on the local file
// system. Writes go to a temporary file that is renamed into place, so a
// crash never leaves a half-written snapshot behind.
type SnapshotStore struct {
	path string
	log  *slog.Logger
}

// NewSnapshotStore creates a file store, creating the parent directory if needed.
func NewSnapshotStore(cfg Config, log *slog.Logger) (*SnapshotStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("snapshot path cannot be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &SnapshotStore{path: cfg.Path, log: log}, nil
}

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Load reads and decodes the snapshot file.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.SnapshotLatency.WithLabelValues(s.Name(), "load").Observe(time.Since(start).Seconds())
	}()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap, err := domain.DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}

	s.log.Debug("Loaded snapshot from file",
		slog.String("path", s.path),
		slog.Int("accounts", snap.Len()))
	return snap, nil
}

// Save encodes the snapshot and atomically replaces the snapshot file.
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

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err = tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.log.Debug("Stored snapshot in file",
		slog.String("path", s.path),
		slog.Int("accounts", snapshot.Len()))
	return nil
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

func (s *SnapshotStore) Name() string {
	return "file"
}

func (s *SnapshotStore) Close() error {
	return nil
}
