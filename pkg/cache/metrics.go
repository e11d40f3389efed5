package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts fresh lookups.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modio_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses counts lookups that returned nothing, by reason.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modio_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"reason"}, // "identity", "uncacheable", "absent", "stale", "decode"
	)

	// CacheEvictions counts entries removed by prefix eviction, by reason.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modio_cache_evictions_total",
			Help: "Total number of evicted response cache entries",
		},
		[]string{"reason"}, // "budget", "stale", "overwrite"
	)

	// CacheInvalidations counts wholesale clears caused by identity changes.
	CacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "modio_cache_invalidations_total",
			Help: "Total number of cache invalidations caused by a changed identity",
		},
	)

	// CacheRejected counts store attempts that cached nothing, by reason.
	CacheRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "modio_cache_rejected_total",
			Help: "Total number of responses the cache refused to store",
		},
		[]string{"reason"}, // "uncacheable", "too_large", "serialize"
	)

	// CacheSize tracks the budget currently in use.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "modio_cache_size_bytes",
			Help: "Current size of the response cache in bytes",
		},
	)

	// CacheEntries tracks the number of stored entries.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "modio_cache_entries",
			Help: "Current number of response cache entries",
		},
	)
)
