// Package metrics exposes the Prometheus registry used by the mod.io client.
// Metrics are defined in their own packages (cache, client) with promauto
// and land in the default registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all client metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns an HTTP handler serving the metrics in Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - modio_cache_hits_total (Counter): Fresh cache lookups
//   - modio_cache_misses_total{reason} (Counter): identity, uncacheable, absent, stale, decode
//   - modio_cache_evictions_total{reason} (Counter): Entries removed by budget, stale or overwrite
//   - modio_cache_invalidations_total (Counter): Whole-cache drops after an identity change
//   - modio_cache_rejected_total{reason} (Counter): Stores refused (uncacheable, too_large, serialize)
//   - modio_cache_size_bytes (Gauge): Budget in use
//   - modio_cache_entries (Gauge): Stored entries
//
// Request Metrics (pkg/client):
//   - modio_requests_total{endpoint, status} (Counter): Live requests by endpoint and status
//   - modio_request_duration_seconds{endpoint} (Histogram): Live request duration
//   - modio_cache_served_total (Counter): Requests answered from the cache
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(modio_cache_hits_total[5m]) /
//   (rate(modio_cache_hits_total[5m]) + sum(rate(modio_cache_misses_total[5m])))
//
//   # Budget pressure
//   rate(modio_cache_evictions_total{reason="budget"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(modio_request_duration_seconds_bucket[5m]))
