// Package provider implements the endpoint side of the sync pipeline.
//
// This package contains:
//   - Executor interface: one request under a hard deadline
//   - HTTPProvider: the HTTP implementation of Executor
//   - Transport: pluggable encoders turning a flat field map into a Request
//   - ProviderMonitor: latency and failure tracking for the endpoint
//   - TimeoutError, NetworkError, HTTPStatusError: the failure taxonomy
package provider

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Request is an encoded call to the endpoint, independent of the endpoint URL.
type Request struct {
	// Method is the HTTP method (GET, POST).
	Method string

	// Query is merged into the endpoint URL's query string.
	Query url.Values

	// Body and ContentType are sent as-is when Body is non-nil.
	Body        []byte
	ContentType string

	// Header carries extra headers such as the request id.
	Header http.Header
}

// Response is a successful (2xx) exchange.
type Response struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// Executor issues exactly one request per call. It never retries.
type Executor interface {
	// GetName returns the endpoint identifier used in logs and metrics.
	GetName() string

	// Execute performs the request under the executor's deadline.
	Execute(ctx context.Context, req Request) (*Response, error)
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}
