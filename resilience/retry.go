// Package resilience provides retry and circuit-breaker primitives. The step
// executor's retry/fallback loop uses CircuitBreaker and times its own
// retries; it does not call Retry.
package resilience

import (
	"errors"
	"time"

	"context"
)

// ErrMaxAttemptsExceeded is the sentinel compared against via errors.Is.
var ErrMaxAttemptsExceeded = errors.New("resilience: max retry attempts exceeded")

// ErrCircuitOpen is returned by RetryWithCircuitBreaker when the breaker
// rejects a call outright.
var ErrCircuitOpen = errors.New("resilience: circuit breaker open")

// RetryConfig configures Retry. Delays are monotonic non-decreasing across
// attempts (spec §4.5/§5). No jitter is applied, so delays are
// deterministic.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64 // 1.0 = flat delay, >1.0 = exponential backoff
}

// DefaultRetryConfig returns a flat 1s delay, 3 attempts.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  1 * time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 1.0,
	}
}

// Retry calls fn up to config.MaxAttempts times, sleeping between attempts.
// Sleep is interruptible via ctx (cooperative cancellation per spec §5).
func Retry(ctx context.Context, config *RetryConfig, fn func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == config.MaxAttempts {
			break
		}

		if attempt > 1 && config.BackoffFactor > 1.0 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if config.MaxDelay > 0 && delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return &AttemptsExhaustedError{Attempts: config.MaxAttempts, Last: lastErr}
}

// RetryWithCircuitBreaker wraps fn so each attempt is gated by cb and
// reports its outcome back to cb.
func RetryWithCircuitBreaker(ctx context.Context, config *RetryConfig, cb *CircuitBreaker, fn func() error) error {
	return Retry(ctx, config, func() error {
		if !cb.CanExecute() {
			return ErrCircuitOpen
		}
		if err := fn(); err != nil {
			cb.RecordFailure()
			return err
		}
		cb.RecordSuccess()
		return nil
	})
}

// AttemptsExhaustedError reports the last error seen after exhausting all
// retry attempts. errors.Is(err, ErrMaxAttemptsExceeded) succeeds for it.
type AttemptsExhaustedError struct {
	Attempts int
	Last     error
}

func (e *AttemptsExhaustedError) Error() string {
	if e.Last == nil {
		return ErrMaxAttemptsExceeded.Error()
	}
	return ErrMaxAttemptsExceeded.Error() + ": " + e.Last.Error()
}

func (e *AttemptsExhaustedError) Unwrap() error { return e.Last }

func (e *AttemptsExhaustedError) Is(target error) bool {
	return target == ErrMaxAttemptsExceeded
}
