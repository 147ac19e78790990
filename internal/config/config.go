// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) returning defaults; Load layers file and env on top.
// - External errors are wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory ingest queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of normalizer workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the submission idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// CacheSize bounds the projection result cache (entries).
	CacheSize int `koanf:"cache_size"`

	// DefaultHorizonDays is the rolling window length when a calendar query
	// gives no explicit bounds.
	DefaultHorizonDays int `koanf:"default_horizon_days"`

	// MaxWindowDays caps the window length a single query may request.
	MaxWindowDays int `koanf:"max_window_days"`

	// FeedURL is the upstream entity feed endpoint; empty disables the feed.
	FeedURL string `koanf:"feed_url"`

	// FeedCron is the refresh schedule for the upstream feed,
	// e.g. "*/15 * * * *".
	FeedCron string `koanf:"feed_cron"`

	// FeedTimeoutSeconds bounds a single feed fetch.
	FeedTimeoutSeconds int `koanf:"feed_timeout_seconds"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		QueueSize:          100_000,
		WorkerCount:        runtime.NumCPU() * 4,
		DedupeSize:         500_000,
		CacheSize:          256,
		DefaultHorizonDays: 7,
		MaxWindowDays:      366,
		FeedURL:            "",
		FeedCron:           "*/15 * * * *",
		FeedTimeoutSeconds: 30,
	}
}
