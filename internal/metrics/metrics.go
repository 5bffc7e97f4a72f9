package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncOperations tracks logical save/fetch operations by outcome
	SyncOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_sync_operations_total",
			Help: "Total number of save/fetch operations",
		},
		[]string{"op", "kind", "outcome"},
	)

	// SyncAttempts tracks endpoint attempts made inside operations
	SyncAttempts = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kasir_sync_attempts",
			Help:    "Attempts used per operation",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{"op"},
	)

	// SyncRetries tracks retries scheduled by reason
	SyncRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_sync_retries_total",
			Help: "Total number of retries scheduled",
		},
		[]string{"op", "reason"},
	)

	// CacheLookups tracks read cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_cache_lookups_total",
			Help: "Read cache lookups",
		},
		[]string{"kind", "result"},
	)

	// CacheInvalidations tracks per-kind invalidations after writes
	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_cache_invalidations_total",
			Help: "Read cache invalidations",
		},
		[]string{"kind"},
	)

	// EndpointLatency tracks completed request latency
	EndpointLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kasir_endpoint_latency_seconds",
			Help:    "Endpoint request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// EndpointErrors tracks failed requests by kind
	EndpointErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_endpoint_errors_total",
			Help: "Total number of failed endpoint requests",
		},
		[]string{"provider", "error_type"},
	)

	// EndpointThrottles tracks rate limit and block responses
	EndpointThrottles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kasir_endpoint_throttles_total",
			Help: "Rate limit and block responses from the endpoint",
		},
		[]string{"provider", "reason"},
	)
)
