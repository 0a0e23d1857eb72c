// Package metrics provides Prometheus metrics for the federation API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeLocked   = "locked"
	OutcomeRejected = "rejected"
)

// Credential check results.
const (
	CredentialValid       = "valid"
	CredentialInvalid     = "invalid"
	CredentialLocked      = "locked"
	CredentialUnsupported = "unsupported"
)

var (
	// OperationsTotal counts federation operations by outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "federation",
			Name:      "operations_total",
			Help:      "Total number of federation operations",
		},
		[]string{"operation", "outcome"},
	)

	// OperationDuration measures operation duration.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "federation",
			Name:      "operation_duration_seconds",
			Help:      "Duration of federation operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CredentialChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "federation",
			Name:      "credential_checks_total",
			Help:      "Total number of credential checks by result",
		},
		[]string{"result"},
	)

	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "federation",
			Name:      "lockouts_total",
			Help:      "Total number of usernames locked after repeated failures",
		},
	)
)

// RecordOperation records an operation that started at start.
func RecordOperation(operation, outcome string, start time.Time) {
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// RecordCredentialCheck records the result of a credential validation.
func RecordCredentialCheck(result string) {
	CredentialChecksTotal.WithLabelValues(result).Inc()
}

// RecordLockout records a newly written lock.
func RecordLockout() {
	LockoutsTotal.Inc()
}
