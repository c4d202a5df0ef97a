package store

// retry.go wraps store operations in bounded exponential backoff.
//
// Only transient connectivity failures (see transient.go) are retried.
// Anything else, like constraint violations or SQL errors, is marked
// permanent and returned immediately.

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Retry policy for store operations. Five attempts spanning roughly
// 500ms + 1s + 2s + 4s of waiting before exhaustion converts to a fatal
// error for the file being processed.
const (
	retryInitialInterval = 500 * time.Millisecond
	retryMultiplier      = 2
	retryMaxInterval     = 10 * time.Second
	retryMaxAttempts     = 5
)

// retry runs op with the store's default backoff policy.
func retry[T any](ctx context.Context, op func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryInitialInterval
	policy.Multiplier = retryMultiplier
	policy.MaxInterval = retryMaxInterval

	return retryWith(ctx, policy, retryMaxAttempts, op)
}

// retryWith runs op until it succeeds, fails permanently, or exhausts the
// attempt budget. Non-transient errors never retry.
func retryWith[T any](ctx context.Context, policy backoff.BackOff, maxAttempts uint, op func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		slog.Warn("transient store error, will retry",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)
		return v, err
	}, backoff.WithBackOff(policy), backoff.WithMaxTries(maxAttempts))
}
