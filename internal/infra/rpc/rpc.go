// Package rpc provides a resilient client for the spreadsheet endpoint.
//
// This package turns one unreliable HTTP endpoint into a bounded pipeline:
//   - Per-request deadline (provider.HTTPProvider)
//   - Pluggable write encodings (form, query string, JSON)
//   - Bounded retries with exponential backoff (retry.WithRetry)
//   - Read-through cache with per-kind invalidation (cache.Store)
//
// # Quick Start
//
//	import "github.com/oggyno/kasir-restoran/internal/infra/rpc"
//
//	p, err := rpc.NewHTTPProvider("sheet", endpointURL, 10*time.Second)
//	client := rpc.NewClient(p, rpc.FormTransport{}, rpc.NewMemoryCache(time.Minute), rpc.DefaultConfig)
//
//	ack, err := client.Save(ctx, domain.NewExpense(time.Now(), 50000, "Lunch"))
//	rows, err := client.Fetch(ctx, domain.Query{Kind: domain.KindExpense, Date: "01/01/2025"})
//
// # Package Structure
//
//   - provider/ - HTTP executor, transports, monitoring, error taxonomy
//   - retry/    - retry loop and failure classification
//   - cache/    - memory and Redis read caches
//
// Most types are re-exported at the root level for convenience.
package rpc

import (
	"time"

	redisclient "github.com/oggyno/kasir-restoran/internal/infra/redis"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/cache"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/provider"
	"github.com/oggyno/kasir-restoran/internal/infra/rpc/retry"
)

// =============================================================================
// Re-exported types from provider package
// =============================================================================

// Executor issues exactly one request per call.
type Executor = provider.Executor

// HTTPProvider implements Executor over net/http.
type HTTPProvider = provider.HTTPProvider

// Transport encodes a flat field map into a request.
type Transport = provider.Transport

// FormTransport posts urlencoded fields.
type FormTransport = provider.FormTransport

// QueryTransport sends fields in the query string.
type QueryTransport = provider.QueryTransport

// JSONTransport posts a JSON object.
type JSONTransport = provider.JSONTransport

// HealthStatus represents the health state of a provider.
type HealthStatus = provider.HealthStatus

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats = provider.MonitorStats

// Failure taxonomy
type (
	TimeoutError    = provider.TimeoutError
	NetworkError    = provider.NetworkError
	HTTPStatusError = provider.HTTPStatusError
)

// Provider status constants
const (
	StatusHealthy   = provider.StatusHealthy
	StatusDegraded  = provider.StatusDegraded
	StatusThrottled = provider.StatusThrottled
	StatusBlocked   = provider.StatusBlocked
)

// NewHTTPProvider creates a new HTTP provider.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) (*HTTPProvider, error) {
	return provider.NewHTTPProvider(name, endpoint, timeout)
}

// NewTransport returns the transport registered under name.
func NewTransport(name string) (Transport, error) {
	return provider.NewTransport(name)
}

// =============================================================================
// Re-exported types from retry package
// =============================================================================

// RetryError is returned once a retry sequence gives up.
type RetryError = retry.Error

// ClassifyError determines whether an error is worth another attempt.
var ClassifyError = retry.ClassifyError

// =============================================================================
// Re-exported types from cache package
// =============================================================================

// Store is a read-through cache of fetched rows.
type Store = cache.Store

// NewMemoryCache creates an in-process cache.
func NewMemoryCache(ttl time.Duration) *cache.MemoryCache {
	return cache.NewMemoryCache(ttl)
}

// NewRedisCache creates a cache shared through Redis.
func NewRedisCache(client *redisclient.Client, ttl time.Duration) *cache.RedisCache {
	return cache.NewRedisCache(client, ttl)
}
