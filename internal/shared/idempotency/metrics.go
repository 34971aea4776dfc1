package idempotency

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookups counts lookups by cache type and result (hit, miss, conflict, error)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_idempotency_lookups_total",
			Help: "Total number of idempotency cache lookups",
		},
		[]string{"cache_type", "result"},
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskguard_idempotency_writes_total",
			Help: "Total number of idempotency cache writes",
		},
		[]string{"cache_type", "result"},
	)

	CleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskguard_idempotency_cleanup_deleted_total",
			Help: "Total number of expired idempotency entries removed",
		},
	)
)
