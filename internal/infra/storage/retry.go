package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vietddude/watchonly/internal/core/domain"
)

// RetryConfig defines retry behavior for remote stores.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     3,
	InitialDelay:    200 * time.Millisecond,
	MaxDelay:        2 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle a store error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

// ClassifyError determines the action for a given error. Missing or malformed
// snapshots will not change on retry.
func ClassifyError(err error) ErrorAction {
	switch {
	case errors.Is(err, ErrSnapshotNotFound),
		errors.Is(err, domain.ErrFormat),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ActionFatal
	default:
		return ActionRetry
	}
}

// RetryStore retries transient Load and Save failures of the wrapped store
// with exponential backoff.
type RetryStore struct {
	inner  SnapshotStore
	config RetryConfig
	log    *slog.Logger
}

// NewRetryStore wraps inner. A zero MaxAttempts means a single attempt.
func NewRetryStore(inner SnapshotStore, config RetryConfig, log *slog.Logger) *RetryStore {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &RetryStore{inner: inner, config: config, log: log}
}

// Load retrieves the snapshot, retrying transient failures.
func (r *RetryStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := r.do(ctx, "load", func() error {
		var err error
		snap, err = r.inner.Load(ctx)
		return err
	})
	return snap, err
}

// Save writes the snapshot, retrying transient failures.
func (r *RetryStore) Save(ctx context.Context, snapshot *domain.Snapshot) error {
	return r.do(ctx, "save", func() error {
		return r.inner.Save(ctx, snapshot)
	})
}

// Name returns the wrapped store name.
func (r *RetryStore) Name() string {
	return r.inner.Name()
}

// Close closes the wrapped store.
func (r *RetryStore) Close() error {
	return r.inner.Close()
}

// Health forwards to the wrapped store when it supports health checks.
func (r *RetryStore) Health(ctx context.Context) error {
	if hc, ok := r.inner.(interface{ Health(context.Context) error }); ok {
		return hc.Health(ctx)
	}
	return nil
}

// UpdatedAt forwards to the wrapped store. Stores that do not track save
// times report ErrSnapshotNotFound.
func (r *RetryStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	if t, ok := r.inner.(interface {
		UpdatedAt(context.Context) (time.Time, error)
	}); ok {
		return t.UpdatedAt(ctx)
	}
	return time.Time{}, ErrSnapshotNotFound
}

func (r *RetryStore) do(ctx context.Context, op string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ClassifyError(err) == ActionFatal {
			return err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		delay := calculateBackoff(attempt, r.config)
		r.log.Warn("Snapshot store call failed, retrying",
			"store", r.inner.Name(),
			"operation", op,
			"attempt", attempt+1,
			"delay", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	if r.config.MaxAttempts == 1 {
		return lastErr
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, r.config.MaxAttempts, lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
