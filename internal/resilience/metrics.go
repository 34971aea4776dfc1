package resilience

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AdmissionsDenied counts attempts rejected before execution, by reason code
	AdmissionsDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_admissions_denied_total",
			Help: "Total number of task attempts rejected before execution",
		},
		[]string{"task", "code"},
	)

	TaskSuccesses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_task_successes_total",
			Help: "Total number of successful task attempts",
		},
		[]string{"task"},
	)

	TaskFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_task_failures_total",
			Help: "Total number of failed task attempts",
		},
		[]string{"task", "category"},
	)

	Quarantines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_quarantines_total",
			Help: "Total number of times a task was quarantined",
		},
		[]string{"task"},
	)

	// BreakerState is 0 closed, 1 open, 2 half-open
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskguard_circuit_breaker_state",
			Help: "Current circuit breaker state per task",
		},
		[]string{"task"},
	)

	RetryDelaySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskguard_retry_delay_seconds",
			Help:    "Computed delay before the next retry",
			Buckets: prometheus.ExponentialBuckets(1, 2, 13),
		},
		[]string{"task"},
	)
)
