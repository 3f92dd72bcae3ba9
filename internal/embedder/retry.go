package embedder

import (
	"context"
	"time"
)

type retryPolicy struct {
	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{attempts: 3, baseDelay: 100 * time.Millisecond, maxDelay: 5 * time.Second}
}

// withRetry runs fn with exponential backoff. Context cancellation stops
// retrying immediately and wins over the last provider error.
func withRetry[T any](ctx context.Context, pol retryPolicy, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := pol.baseDelay

	for attempt := 0; attempt < pol.attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == pol.attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
			delay *= 2
			if delay > pol.maxDelay {
				delay = pol.maxDelay
			}
		}
	}
	return zero, lastErr
}
