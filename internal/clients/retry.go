// Package clients holds the HTTP adapters for the two external
// collaborators: the auth service (identity verification, critical
// path) and the player service (match finalization, best effort).
// Both share one retry policy shape, tuned independently.
package clients

import (
	"context"
	"errors"
	"time"
)

// retryPolicy governs retries of one external call: a bounded number
// of attempts, each under its own timeout, with exponential backoff
// between attempts.
type retryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Timeout     time.Duration // per attempt
}

// permanentError marks a failure that must not be retried (e.g. an
// explicit 401 from the auth service).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// permanent wraps err so the retry loop stops immediately.
func permanent(err error) error {
	return &permanentError{err: err}
}

// do runs op up to MaxAttempts times. Each attempt gets a context
// bounded by Timeout. Backoff doubles from BaseDelay and is capped at
// MaxDelay. A permanent error or a cancelled parent context stops the
// loop; otherwise the last attempt's error is returned.
func (p retryPolicy) do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		err := op(attemptCtx)
		cancel()

		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		lastErr = err

		if attempt < p.MaxAttempts {
			delay := p.BaseDelay << uint(attempt-1)
			if p.MaxDelay > 0 && delay > p.MaxDelay {
				delay = p.MaxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}
