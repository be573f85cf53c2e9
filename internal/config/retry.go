package config

import "time"

// RetryConfig holds configuration for retrying admin API requests
type RetryConfig struct {
	// MaxAttempts is the number of attempts before giving up, including
	// the first request
	MaxAttempts int
	// BaseDelay is the initial backoff delay
	BaseDelay time.Duration
	// MaxDelay caps the backoff delay
	MaxDelay time.Duration
}

// DefaultRetryConfig provides default values for API request retries
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 4,
	BaseDelay:   200 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}
