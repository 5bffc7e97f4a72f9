package provider

import (
	"fmt"
	"time"
)

const maxErrorBody = 256

// TimeoutError means the per-request deadline fired before the exchange finished.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %v", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// NetworkError is a transport-level failure: DNS, refused or reset connections.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError is a completed exchange with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// ServerSide reports a 5xx status.
func (e *HTTPStatusError) ServerSide() bool {
	return e.StatusCode >= 500
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
