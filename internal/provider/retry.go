package provider

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/maadhav-codes/diff2commit/internal/logger"
	"github.com/maadhav-codes/diff2commit/internal/models"
)

var (
	retryInitialInterval = 2 * time.Second
	retryMaxInterval     = 10 * time.Second
)

// withRetry runs op up to attempts times with exponential backoff between
// tries. Only transient failures are retried.
func withRetry[T any](ctx context.Context, attempts int, op func() (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(retryInitialInterval),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(retryMaxInterval),
		backoff.WithMaxElapsedTime(0),
	)

	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := op()
		if err == nil {
			return v, nil
		}
		if ctx.Err() != nil || !isRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx),
		func(err error, wait time.Duration) {
			logger.Warn("provider request failed, retrying",
				"attempt", attempt, "of", attempts, "wait", wait, "error", err)
		})
}

func isRetryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	switch {
	case errors.Is(err, models.ErrInvalidAPIKey),
		errors.Is(err, models.ErrMissingAPIKey),
		errors.Is(err, models.ErrEmptyResponse),
		errors.Is(err, context.Canceled):
		return false
	}
	// Transport failures: connection refused, reset, client timeout.
	return true
}
