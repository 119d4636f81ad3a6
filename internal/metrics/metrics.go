package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core request/hit/miss counters, labelled by logical operation
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_requests_total",
			Help: "Total number of cache requests",
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_hits_total",
			Help: "Total number of fresh cache hits",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_misses_total",
			Help: "Total number of cache misses or expired entries",
		},
		[]string{"operation"},
	)

	// Callers that joined an in-flight upstream request instead of starting one
	CoalescedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_coalesced_total",
			Help: "Total number of requests served by a shared in-flight upstream call",
		},
		[]string{"operation"},
	)

	StaleServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_stale_served_total",
			Help: "Total number of stale entries served after an upstream failure",
		},
		[]string{"operation", "reason"},
	)

	UpstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_upstream_errors_total",
			Help: "Total number of failed upstream calls by error kind",
		},
		[]string{"operation", "kind"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_cache_upstream_duration_seconds",
			Help:    "Duration of upstream provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CacheKeys = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_cache_keys",
			Help: "Number of entries held by a cache level",
		},
		[]string{"level"},
	)

	PendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_cache_pending_requests",
			Help: "Number of keys with an upstream call in flight",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_store_errors_total",
			Help: "Total number of cache store errors",
		},
		[]string{"level", "kind"},
	)

	// L1 capacity metrics only (if L1 is bigcache)
	CacheCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_cache_capacity_bytes",
			Help: "L1 cache capacity in bytes",
		},
		[]string{"level"},
	)

	CacheUsed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "market_cache_used_bytes",
			Help: "L1 cache used space in bytes",
		},
		[]string{"level"},
	)
)

// RecordCacheRequest records a cache request
func RecordCacheRequest(operation string) {
	CacheRequests.WithLabelValues(operation).Inc()
}

// RecordCacheHit records a fresh cache hit
func RecordCacheHit(operation string) {
	CacheHits.WithLabelValues(operation).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(operation string) {
	CacheMisses.WithLabelValues(operation).Inc()
}

// RecordCoalesced records a request that shared another caller's upstream call
func RecordCoalesced(operation string) {
	CoalescedRequests.WithLabelValues(operation).Inc()
}

// RecordStaleServed records a stale fallback and the error kind that caused it
func RecordStaleServed(operation, reason string) {
	StaleServed.WithLabelValues(operation, reason).Inc()
}

// RecordUpstreamError records a failed upstream call
func RecordUpstreamError(operation, kind string) {
	UpstreamErrors.WithLabelValues(operation, kind).Inc()
}

// RecordCacheError records a cache store error with level and kind
func RecordCacheError(level, kind string) {
	CacheErrors.WithLabelValues(level, kind).Inc()
}

// UpdateCacheKeys updates the number of keys in a cache level
func UpdateCacheKeys(level string, count int64) {
	CacheKeys.WithLabelValues(level).Set(float64(count))
}

// UpdatePendingRequests updates the in-flight request gauge
func UpdatePendingRequests(count int) {
	PendingRequests.Set(float64(count))
}

// UpdateL1CacheCapacity updates L1 cache capacity metrics only
func UpdateL1CacheCapacity(capacity, used int64) {
	CacheCapacity.WithLabelValues("l1").Set(float64(capacity))
	CacheUsed.WithLabelValues("l1").Set(float64(used))
}

// TimeUpstreamCall returns a timer function for measuring upstream call duration
func TimeUpstreamCall(operation string) func() {
	timer := prometheus.NewTimer(UpstreamDuration.WithLabelValues(operation))
	return func() {
		timer.ObserveDuration()
	}
}
