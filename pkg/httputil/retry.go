package httputil

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// maxRetryAfter caps server-provided waits so a bad header cannot stall a fetch.
const maxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure. After, when positive, replaces
// the computed backoff for the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	return RetryAfter(err, 0)
}

// RetryAfter marks err as transient and asks for at least d before the
// next attempt.
func RetryAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: min(max(d, 0), maxRetryAfter)}
}

// IsRetryable reports whether err wraps a RetryableError.
func IsRetryable(err error) bool {
	var r *RetryableError
	return errors.As(err, &r)
}

// ParseRetryAfter reads a Retry-After header given in seconds. HTTP dates
// and garbage yield zero.
func ParseRetryAfter(v string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// Retry calls fn until it succeeds, returns a non-retryable error, or
// attempts are used up. The wait starts at delay and doubles; a RetryAfter
// hint overrides it for that wait. Cancellation while waiting returns
// ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		var r *RetryableError
		if err == nil || !errors.As(err, &r) {
			return err
		}
		if i == attempts-1 {
			break
		}
		wait := delay
		if r.After > 0 {
			wait = r.After
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return err
}

// RetryWithBackoff is Retry with three attempts starting at one second.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}
