package control

import (
	"context"
	"time"
)

// HealthChecker is implemented by snapshot stores backed by a remote service.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// SaveTracker is implemented by snapshot stores that record when they were
// last written.
type SaveTracker interface {
	UpdatedAt(ctx context.Context) (time.Time, error)
}

// HealthStatus summarises the manager for the health endpoint.
type HealthStatus struct {
	Healthy   bool       `json:"healthy"`
	Store     string     `json:"store"`
	Accounts  int        `json:"accounts"`
	Error     string     `json:"error,omitempty"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
	CheckedAt time.Time  `json:"checked_at"`
}
