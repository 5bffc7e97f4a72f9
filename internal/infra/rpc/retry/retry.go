// Package retry runs an operation repeatedly until it succeeds, fails fatally
// or the attempt budget is spent, sleeping an exponentially growing delay
// between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/oggyno/kasir-restoran/internal/infra/rpc/provider"
	"github.com/oggyno/kasir-restoran/internal/metrics"
)

// Action determines how to handle an error.
type Action int

const (
	ActionRetry Action = iota
	ActionFatal
)

func (a Action) String() string {
	if a == ActionRetry {
		return "retry"
	}
	return "fatal"
}

// ClassifyError determines the action for a given error. Timeouts, network
// failures and 5xx statuses are transient; everything else is not.
func ClassifyError(err error) Action {
	var timeoutErr *provider.TimeoutError
	var netErr *provider.NetworkError
	var statusErr *provider.HTTPStatusError

	switch {
	case errors.As(err, &timeoutErr), errors.As(err, &netErr):
		return ActionRetry
	case errors.As(err, &statusErr):
		if statusErr.ServerSide() {
			return ActionRetry
		}
	}
	return ActionFatal
}

// Reason labels an error for logs and metrics.
func Reason(err error) string {
	var timeoutErr *provider.TimeoutError
	var netErr *provider.NetworkError
	var statusErr *provider.HTTPStatusError

	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	}
	return "other"
}

// Policy configures one retry sequence.
type Policy struct {
	Op          string
	MaxAttempts int
	BaseDelay   time.Duration
	// MaxDelay caps a single backoff; zero leaves it uncapped.
	MaxDelay time.Duration

	// Classify overrides ClassifyError.
	Classify func(error) Action
	// Sleep overrides the context-aware timer between attempts.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each backoff.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Error is returned once a sequence gives up.
type Error struct {
	Op       string
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// WithRetry calls fn until it succeeds. Attempts are strictly sequential; the
// delay before attempt i+1 is BaseDelay * 2^i.
func WithRetry[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	classify := p.Classify
	if classify == nil {
		classify = ClassifyError
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	backoff := newBackoff(p.BaseDelay, p.MaxDelay)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if classify(err) == ActionFatal {
			return zero, &Error{Op: p.Op, Attempts: attempt + 1, Err: err}
		}
		if attempt == maxAttempts-1 {
			break
		}

		delay := nextDelay(backoff)
		reason := Reason(err)
		slog.Warn("Retrying after failure",
			"op", p.Op,
			"attempt", attempt+1,
			"max_attempts", maxAttempts,
			"delay", delay,
			"reason", reason,
			"error", err,
		)
		metrics.SyncRetries.WithLabelValues(p.Op, reason).Inc()
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, &Error{Op: p.Op, Attempts: attempt + 1, Err: err}
		}
	}

	return zero, &Error{Op: p.Op, Attempts: maxAttempts, Err: lastErr}
}

// newBackoff returns nil when there is nothing to wait for.
func newBackoff(base, maxDelay time.Duration) goretry.Backoff {
	if base <= 0 {
		return nil
	}
	b := goretry.NewExponential(base)
	if maxDelay > 0 {
		b = goretry.WithCappedDuration(maxDelay, b)
	}
	return b
}

func nextDelay(b goretry.Backoff) time.Duration {
	if b == nil {
		return 0
	}
	d, stop := b.Next()
	if stop {
		return 0
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
