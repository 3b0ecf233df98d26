// Package metrics registers the Prometheus metrics used by the search
// blocker. The validator imports it directly, so all metrics are registered
// before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts validation calls labelled by channel and
	// outcome ("allowed", "blocked").
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchblocker_validations_total",
			Help: "Total number of search terms validated.",
		},
		[]string{"channel", "outcome"},
	)

	// BlockedTotal counts blocked terms by channel and block reason
	// ("suspicious_pattern", "blacklisted").
	BlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchblocker_blocked_total",
			Help: "Total number of search terms blocked.",
		},
		[]string{"channel", "reason"},
	)

	// ValidationDuration observes per-call validation latency in seconds.
	// Validation is pure computation, hence the sub-millisecond buckets.
	ValidationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchblocker_validation_duration_seconds",
			Help:    "Validation duration in seconds.",
			Buckets: []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01},
		},
		[]string{"channel"},
	)

	// PolicyReloads counts policy snapshot refreshes by outcome
	// ("ok", "empty", "error").
	PolicyReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchblocker_policy_reloads_total",
			Help: "Total policy snapshot reloads by outcome.",
		},
		[]string{"outcome"},
	)

	// AuditWriteErrors counts failed audit log inserts.
	AuditWriteErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchblocker_audit_write_errors_total",
			Help: "Total failed audit log writes.",
		},
	)
)
