package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/oggyno/kasir-restoran/internal/metrics"
)

const userAgent = "kasir-restoran/1"

// HTTPProvider executes requests against the spreadsheet endpoint, one request
// per call, each bounded by the configured timeout.
type HTTPProvider struct {
	name       string
	endpoint   *url.URL
	timeout    time.Duration
	httpClient *http.Client

	mu           sync.RWMutex
	health       HealthStatus
	totalLatency time.Duration
	successCount int
	failureCount int
	requestCount int

	Monitor *ProviderMonitor
}

// NewHTTPProvider creates a provider for endpoint. The timeout applies to each
// Execute call, including reading the response body.
func NewHTTPProvider(name, endpoint string, timeout time.Duration) (*HTTPProvider, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint must be http or https, got %q", endpoint)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", timeout)
	}

	return &HTTPProvider{
		name:     name,
		endpoint: u,
		timeout:  timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		health: HealthStatus{
			Available:     true,
			LastSuccessAt: time.Now(),
		},
		Monitor: NewProviderMonitor(),
	}, nil
}

// Execute performs exactly one request. A deadline hit yields *TimeoutError, a
// transport failure *NetworkError and a non-2xx status *HTTPStatusError. If ctx
// itself is cancelled its error is returned as-is.
func (p *HTTPProvider) Execute(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	httpReq, err := p.newRequest(attemptCtx, req)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, p.transportError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, p.transportError(ctx, attemptCtx, err)
	}

	latency := time.Since(start)
	metrics.EndpointLatency.WithLabelValues(p.name, req.Method).Observe(latency.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Rate limit / block detection
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
			p.Monitor.RecordThrottle(resp.StatusCode, resp.Header.Get("Retry-After"))
			metrics.EndpointThrottles.WithLabelValues(p.name, fmt.Sprint(resp.StatusCode)).Inc()
		case p.Monitor.DetectThrottlePattern(string(body)):
			p.Monitor.RecordThrottle(http.StatusTooManyRequests, "")
			metrics.EndpointThrottles.WithLabelValues(p.name, "pattern").Inc()
		}
		p.recordFailure(FailureStatus)
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: truncate(body)}
	}

	p.recordSuccess(latency)

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Latency:    latency,
	}, nil
}

func (p *HTTPProvider) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u := *p.endpoint
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("User-Agent", userAgent)
	return httpReq, nil
}

// transportError separates our deadline from the caller's cancellation and from
// plain connection failures.
func (p *HTTPProvider) transportError(parent, attempt context.Context, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}

	var netErr net.Error
	if errors.Is(attempt.Err(), context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		p.recordFailure(FailureTimeout)
		return &TimeoutError{Timeout: p.timeout, Err: err}
	}

	p.recordFailure(FailureNetwork)
	return &NetworkError{Err: err}
}

// GetName returns the provider's name.
func (p *HTTPProvider) GetName() string {
	return p.name
}

// Timeout returns the per-request deadline.
func (p *HTTPProvider) Timeout() time.Duration {
	return p.timeout
}

// GetHealth returns the provider's health status with monitor stats attached.
func (p *HTTPProvider) GetHealth() HealthStatus {
	p.mu.RLock()
	h := p.health
	p.mu.RUnlock()

	stats := p.Monitor.GetStats()
	h.MonitorStats = &stats
	return h
}

// IsAvailable checks if the provider is available.
func (p *HTTPProvider) IsAvailable() bool {
	status := p.Monitor.CheckProviderStatus()
	return status == StatusHealthy || status == StatusDegraded
}

// Close cleans up resources.
func (p *HTTPProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

func (p *HTTPProvider) recordSuccess(latency time.Duration) {
	p.Monitor.RecordRequest(latency)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.successCount++
	p.requestCount++
	p.totalLatency += latency
	p.health.LastSuccessAt = time.Now()
	p.health.Available = true

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}
	if p.successCount > 0 {
		p.health.Latency = p.totalLatency / time.Duration(p.successCount)
	}
}

func (p *HTTPProvider) recordFailure(kind FailureKind) {
	p.Monitor.RecordFailure(kind)
	metrics.EndpointErrors.WithLabelValues(p.name, string(kind)).Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.failureCount++
	p.requestCount++
	p.health.LastFailureAt = time.Now()

	if p.requestCount > 0 {
		p.health.ErrorRate = float64(p.failureCount) / float64(p.requestCount)
	}

	if p.health.ErrorRate > 0.5 {
		p.health.Available = false
	}
}
