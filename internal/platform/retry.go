package platform

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"

	"costscope/internal/config"
	"costscope/internal/logging"
)

const jitterPercent = 0.1

// transientStatus reports whether an HTTP status is worth retrying.
// Client errors other than throttling are final; retrying a 404 or a
// bad token only delays the real failure.
func transientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// transientError reports whether a transport-level error is worth
// retrying. Context cancellation is never retried.
func transientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// addJitter spreads a delay by ±10% so concurrent fetches do not retry
// in lockstep.
func addJitter(delay time.Duration) time.Duration {
	jitter := float64(delay) * jitterPercent
	return delay + time.Duration(jitter*(rand.Float64()*2-1))
}

// withRetry runs operation up to cfg.MaxAttempts times with exponential
// backoff. operation reports via retryable whether its failure is worth
// another attempt; a non-retryable failure is returned immediately.
func withRetry(ctx context.Context, cfg config.RetryConfig, name string, operation func() (retryable bool, err error)) error {
	delay := cfg.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		retryable, err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable || attempt == cfg.MaxAttempts {
			return err
		}

		logging.Debug("Transient request failure, retrying", map[string]interface{}{
			"request": name,
			"attempt": attempt,
			"max":     cfg.MaxAttempts,
			"delay":   delay.String(),
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(addJitter(delay)):
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}
