// Package metrics exposes Prometheus instrumentation for the access guard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuardDecisions counts guard outcomes per protected operation.
	// reason is "ok" for allows and names the failing step for denies:
	// no_caller, no_entity_id, lookup_failed, insufficient_role.
	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gatekit_guard_decisions_total",
		Help: "Access guard decisions by operation, decision and reason.",
	}, []string{"operation", "decision", "reason"})

	// GuardCheckDuration observes the latency of a full guard evaluation,
	// including the single store read.
	GuardCheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gatekit_guard_check_duration_seconds",
		Help:    "Latency of access guard evaluations.",
		Buckets: prometheus.DefBuckets,
	})
)
