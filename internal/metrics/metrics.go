// Package metrics holds the Prometheus collectors for provisioning, teardown and queries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry is the registry every kbstack collector is registered with.
// The serve command exposes it at /metrics.
var Registry = prometheus.NewRegistry()

var (
	// Provisioning metrics
	phaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kbstack",
			Subsystem: "provisioning",
			Name:      "phase_duration_seconds",
			Help:      "Duration of provisioning phases in seconds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 13), // 1s to ~68min
		},
		[]string{"phase", "result"},
	)

	pollAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbstack",
			Subsystem: "provisioning",
			Name:      "poll_attempts_total",
			Help:      "Total number of status checks by resource kind",
		},
		[]string{"resource"},
	)

	pollOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbstack",
			Subsystem: "provisioning",
			Name:      "poll_outcomes_total",
			Help:      "Total number of finished waits by resource kind and outcome",
		},
		[]string{"resource", "outcome"},
	)

	// Teardown metrics
	teardownTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbstack",
			Subsystem: "teardown",
			Name:      "resources_total",
			Help:      "Total number of teardown deletes by resource kind and result",
		},
		[]string{"kind", "result"},
	)

	// Query metrics
	queryRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kbstack",
			Subsystem: "query",
			Name:      "requests_total",
			Help:      "Total number of knowledge base queries by result",
		},
		[]string{"result"},
	)

	queryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbstack",
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Duration of knowledge base queries in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		},
	)

	queryCitations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "kbstack",
			Subsystem: "query",
			Name:      "citations",
			Help:      "Number of distinct S3 citations per answer",
			Buckets:   prometheus.LinearBuckets(0, 1, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		phaseDuration,
		pollAttemptsTotal,
		pollOutcomesTotal,
		teardownTotal,
		queryRequestsTotal,
		queryDuration,
		queryCitations,
	)
}

// RecordPhase records the duration and result of a provisioning phase.
func RecordPhase(phase, result string, seconds float64) {
	phaseDuration.WithLabelValues(phase, result).Observe(seconds)
}

// RecordPollAttempt counts one status check.
func RecordPollAttempt(resource string) {
	pollAttemptsTotal.WithLabelValues(resource).Inc()
}

// RecordPollOutcome counts a finished wait.
func RecordPollOutcome(resource, outcome string) {
	pollOutcomesTotal.WithLabelValues(resource, outcome).Inc()
}

// RecordTeardown counts one teardown delete.
func RecordTeardown(kind, result string) {
	teardownTotal.WithLabelValues(kind, result).Inc()
}

// RecordQuery records a query result, its latency and the number of citations.
func RecordQuery(result string, seconds float64, citations int) {
	queryRequestsTotal.WithLabelValues(result).Inc()
	queryDuration.Observe(seconds)
	if result == "ok" {
		queryCitations.Observe(float64(citations))
	}
}
