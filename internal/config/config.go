package config

import "runtime"

// GlobalConfig holds the global configuration for the application
type GlobalConfig struct {
	// Endpoint is the admin API base URL; when set it overrides the
	// endpoint from the credentials profile
	Endpoint string

	// Profile is the credentials profile to use
	Profile string

	// Period is the default cost period (7d, 30d or 90d)
	Period string

	// MaxWorkers defines the maximum number of concurrent cost fetches
	MaxWorkers int

	// LogFormat is the format for logging
	LogFormat string

	// LogLevel is the minimum level for logging
	LogLevel string
}

// Config is the global configuration instance
var Config = &GlobalConfig{
	Profile:    "default",
	Period:     "30d",
	MaxWorkers: runtime.NumCPU() * 4, // fetches are I/O bound
}
