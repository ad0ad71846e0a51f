package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Accounts tracks the number of registered watch-only accounts
	Accounts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchonly_accounts",
			Help: "Number of registered watch-only accounts",
		},
	)

	// KeyringOperations tracks registry operations by outcome
	KeyringOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchonly_keyring_operations_total",
			Help: "Total number of keyring operations",
		},
		[]string{"operation", "result"},
	)

	// SigningRejections tracks refused signing attempts per method
	SigningRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchonly_signing_rejections_total",
			Help: "Total number of rejected signing attempts",
		},
		[]string{"method"},
	)

	// SnapshotPersists tracks snapshot writes per store
	SnapshotPersists = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchonly_snapshot_persist_total",
			Help: "Total number of snapshot persist attempts",
		},
		[]string{"store", "result"},
	)

	// StoreUp reports whether the snapshot store answered the last health check
	StoreUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchonly_store_up",
			Help: "Whether the snapshot store is reachable (1) or not (0)",
		},
		[]string{"store"},
	)

	// SnapshotLatency tracks snapshot load/save latency
	SnapshotLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchonly_snapshot_latency_seconds",
			Help:    "Snapshot load and save latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "operation"},
	)
)

// Result labels an operation outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
