// Package metrics provides Prometheus metrics for the flow monitor.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Telemetry client metrics.
	TelemetryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowmon",
		Subsystem: "telemetry",
		Name:      "requests_total",
		Help:      "Backend telemetry requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"}) // outcome: ok, timeout, canceled, transport, status, malformed
	TelemetryRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flowmon",
		Subsystem: "telemetry",
		Name:      "request_duration_seconds",
		Help:      "Backend telemetry request latency.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	// Refresh loop metrics.
	RefreshCyclesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowmon",
		Subsystem: "refresh",
		Name:      "cycles_total",
		Help:      "Refresh cycles started by trigger.",
	}, []string{"trigger"}) // scheduled, manual, startup
	RefreshCoalescedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowmon",
		Subsystem: "refresh",
		Name:      "coalesced_total",
		Help:      "Triggers dropped because a cycle was already in flight.",
	})
	RefreshStaleTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "flowmon",
		Subsystem: "refresh",
		Name:      "stale_results_total",
		Help:      "Cycle results discarded because a newer cycle superseded them.",
	})
	RefreshDegradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flowmon",
		Subsystem: "refresh",
		Name:      "degraded_sources_total",
		Help:      "Sources that soft-failed within a completed cycle.",
	}, []string{"endpoint"})
	RefreshCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flowmon",
		Subsystem: "refresh",
		Name:      "cycle_duration_seconds",
		Help:      "Wall time from cycle start to all sources resolved.",
		Buckets:   prometheus.DefBuckets,
	})

	// Pagination metrics.
	PaginationTotalItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowmon",
		Subsystem: "pagination",
		Name:      "total_items",
		Help:      "Authoritative flow total used by the last reconciliation.",
	})
	PaginationCurrentPage = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "flowmon",
		Subsystem: "pagination",
		Name:      "current_page",
		Help:      "Current page after the last reconciliation or navigation.",
	})
)

func init() {
	prometheus.MustRegister(
		TelemetryRequestsTotal,
		TelemetryRequestDuration,

		RefreshCyclesTotal,
		RefreshCoalescedTotal,
		RefreshStaleTotal,
		RefreshDegradedTotal,
		RefreshCycleDuration,

		PaginationTotalItems,
		PaginationCurrentPage,
	)
}
