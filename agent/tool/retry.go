package tool

import (
	"context"
	"errors"
	"time"

	contractx "github.com/travel-buddy/lounge-agent/agent/contract"
)

const (
	defaultRetryAttempts = 2
	retryBackoff         = 200 * time.Millisecond
)

// withRetry re-runs fn on transient upstream failures. Only errors tagged
// ErrExternal are retried; everything else surfaces immediately. Callers
// must only pass side-effect-free functions.
func withRetry[T any](ctx context.Context, attempts int, fn func(context.Context) (T, error)) (T, error) {
	var (
		result T
		err    error
	)
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(retryBackoff):
			}
		}
		result, err = fn(ctx)
		if err == nil || !errors.Is(err, contractx.ErrExternal) {
			return result, err
		}
	}
	return result, err
}
