package provider

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// ProviderStatus represents the health state of a provider.
type ProviderStatus int

const (
	StatusHealthy   ProviderStatus = iota // Provider is working normally
	StatusDegraded                        // Provider is slow or failing intermittently
	StatusThrottled                       // Provider is rate limiting
	StatusBlocked                         // Provider has blocked this client
)

func (s ProviderStatus) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusBlocked:
		return "blocked"
	}
	return "healthy"
}

// MarshalText renders the status by name in JSON health reports.
func (s ProviderStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FailureKind labels a failed attempt.
type FailureKind string

const (
	FailureTimeout FailureKind = "timeout"
	FailureNetwork FailureKind = "network"
	FailureStatus  FailureKind = "status"
)

// MonitorStats holds monitoring statistics for a provider.
type MonitorStats struct {
	Status              ProviderStatus `json:"status"`
	AverageLatency      time.Duration  `json:"average_latency"`
	Timeouts            int            `json:"timeouts"`
	NetworkErrors       int            `json:"network_errors"`
	StatusErrors        int            `json:"status_errors"`
	ThrottleCount429    int            `json:"throttle_429"`
	ThrottleCount403    int            `json:"throttle_403"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	RequestsLast1Hour   int            `json:"requests_last_1h"`
	RequestsLast24Hours int            `json:"requests_last_24h"`
	DailyLimit          int            `json:"daily_limit"`
	UsagePercentage     float64        `json:"usage_percentage"`
}

// ProviderMonitor tracks provider health and rate limiting.
type ProviderMonitor struct {
	mu sync.RWMutex

	// Response time tracking
	recentLatencies  []time.Duration
	maxLatencyWindow int

	// Error tracking
	failures            map[FailureKind]int
	consecutiveFailures int
	status429Count      int
	status403Count      int
	throttlePatterns    []string
	lastThrottleTime    time.Time
	retryAfterDuration  time.Duration

	// Sliding window
	requestTimestamps []time.Time
	DailyLimit        int
	windowDuration    time.Duration

	// Thresholds
	slowResponseThreshold time.Duration
	failureThreshold      int

	now func() time.Time
}

// NewProviderMonitor creates a new monitor with default settings.
func NewProviderMonitor() *ProviderMonitor {
	return &ProviderMonitor{
		recentLatencies:  make([]time.Duration, 0, 100),
		maxLatencyWindow: 100,
		failures:         make(map[FailureKind]int),
		throttlePatterns: []string{
			"service invoked too many times",
			"rate limit exceeded",
			"too many requests",
			"quota exceeded",
			"try again later",
		},
		requestTimestamps:     make([]time.Time, 0),
		DailyLimit:            20000, // Apps Script consumer quota
		windowDuration:        24 * time.Hour,
		slowResponseThreshold: 5 * time.Second,
		failureThreshold:      3,
		now:                   time.Now,
	}
}

// RecordRequest records a successful request with its latency.
func (pm *ProviderMonitor) RecordRequest(latency time.Duration) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	now := pm.now()

	pm.recentLatencies = append(pm.recentLatencies, latency)
	if len(pm.recentLatencies) > pm.maxLatencyWindow {
		pm.recentLatencies = pm.recentLatencies[1:]
	}

	pm.consecutiveFailures = 0
	pm.requestTimestamps = append(pm.requestTimestamps, now)
	pm.pruneLocked(now)
}

// RecordFailure records a failed attempt. Failed attempts still count against
// the daily quota since the endpoint may have executed them.
func (pm *ProviderMonitor) RecordFailure(kind FailureKind) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	now := pm.now()
	pm.failures[kind]++
	pm.consecutiveFailures++
	pm.requestTimestamps = append(pm.requestTimestamps, now)
	pm.pruneLocked(now)
}

func (pm *ProviderMonitor) pruneLocked(now time.Time) {
	cutoff := now.Add(-pm.windowDuration)
	i := 0
	for i < len(pm.requestTimestamps) && !pm.requestTimestamps[i].After(cutoff) {
		i++
	}
	pm.requestTimestamps = pm.requestTimestamps[i:]
}

// RecordThrottle records a rate limiting or blocking response.
func (pm *ProviderMonitor) RecordThrottle(statusCode int, retryAfter string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.lastThrottleTime = pm.now()

	switch statusCode {
	case 429:
		pm.status429Count++
		pm.retryAfterDuration = 60 * time.Second // Default 1min
		if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
			pm.retryAfterDuration = time.Duration(secs) * time.Second
		}
	case 403:
		pm.status403Count++
		pm.retryAfterDuration = 10 * time.Minute // Longer for IP block
	}
}

// DetectThrottlePattern checks if a message contains throttle patterns.
func (pm *ProviderMonitor) DetectThrottlePattern(message string) bool {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	lowerMsg := strings.ToLower(message)
	for _, pattern := range pm.throttlePatterns {
		if strings.Contains(lowerMsg, pattern) {
			return true
		}
	}
	return false
}

// CheckProviderStatus returns the current status of the provider.
func (pm *ProviderMonitor) CheckProviderStatus() ProviderStatus {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.statusLocked()
}

func (pm *ProviderMonitor) statusLocked() ProviderStatus {
	sinceThrottle := pm.now().Sub(pm.lastThrottleTime)

	if pm.status403Count > 0 && sinceThrottle < pm.retryAfterDuration {
		return StatusBlocked
	}
	if pm.status429Count > 0 && sinceThrottle < pm.retryAfterDuration {
		return StatusThrottled
	}
	if pm.DailyLimit > 0 && float64(len(pm.requestTimestamps))/float64(pm.DailyLimit) > 0.9 {
		return StatusThrottled
	}
	if pm.consecutiveFailures >= pm.failureThreshold {
		return StatusDegraded
	}
	if len(pm.recentLatencies) > 10 && pm.averageLocked() > pm.slowResponseThreshold {
		return StatusDegraded
	}
	return StatusHealthy
}

// GetRetryAfter returns remaining time before retry is allowed.
func (pm *ProviderMonitor) GetRetryAfter() time.Duration {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.retryAfterDuration > 0 {
		remaining := pm.retryAfterDuration - pm.now().Sub(pm.lastThrottleTime)
		if remaining > 0 {
			return remaining
		}
	}
	return 0
}

func (pm *ProviderMonitor) averageLocked() time.Duration {
	if len(pm.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range pm.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(pm.recentLatencies))
}

// GetRequestCount returns number of requests in the given duration.
func (pm *ProviderMonitor) GetRequestCount(duration time.Duration) int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.countLocked(duration)
}

func (pm *ProviderMonitor) countLocked(duration time.Duration) int {
	cutoff := pm.now().Add(-duration)
	count := 0
	for _, t := range pm.requestTimestamps {
		if t.After(cutoff) {
			count++
		}
	}
	return count
}

// GetStats returns current monitoring statistics.
func (pm *ProviderMonitor) GetStats() MonitorStats {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	stats := MonitorStats{
		Status:              pm.statusLocked(),
		AverageLatency:      pm.averageLocked(),
		Timeouts:            pm.failures[FailureTimeout],
		NetworkErrors:       pm.failures[FailureNetwork],
		StatusErrors:        pm.failures[FailureStatus],
		ThrottleCount429:    pm.status429Count,
		ThrottleCount403:    pm.status403Count,
		ConsecutiveFailures: pm.consecutiveFailures,
		RequestsLast1Hour:   pm.countLocked(time.Hour),
		RequestsLast24Hours: len(pm.requestTimestamps),
		DailyLimit:          pm.DailyLimit,
	}

	if pm.DailyLimit > 0 {
		stats.UsagePercentage = float64(len(pm.requestTimestamps)) / float64(pm.DailyLimit) * 100
	}

	return stats
}

// SetDailyLimit updates the daily request limit.
func (pm *ProviderMonitor) SetDailyLimit(limit int) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.DailyLimit = limit
}
