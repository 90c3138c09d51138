package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAdminBaseURL = "https://gfiresearch.dev/api"
	DefaultAPITimeout   = 30 * time.Second
	DefaultMaxRetries   = 3

	DefaultPollInterval = 1 * time.Second
	DefaultBackoffBase  = 1 * time.Second
	DefaultBackoffMax   = 15 * time.Second
	DefaultWindowSize   = 40
	DefaultSpreadSample = 10
	DefaultStaggerStep  = 200 * time.Millisecond
	DefaultFeedTimeout  = 10 * time.Second

	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 10 * time.Second

	DefaultAuthStateFile = "alphadash-auth.json"

	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 1000
	DefaultFlushInterval = 1 * time.Second
	DefaultBufferSize    = 10000
)

func (c *Config) applyDefaults() {
	// Admin API defaults
	if c.AdminAPI.BaseURL == "" {
		c.AdminAPI.BaseURL = DefaultAdminBaseURL
	}
	if c.AdminAPI.Timeout == 0 {
		c.AdminAPI.Timeout = DefaultAPITimeout
	}
	if c.AdminAPI.MaxRetries == 0 {
		c.AdminAPI.MaxRetries = DefaultMaxRetries
	}

	// Feed defaults
	if c.Feed.PollInterval == 0 {
		c.Feed.PollInterval = DefaultPollInterval
	}
	if c.Feed.BackoffBase == 0 {
		c.Feed.BackoffBase = DefaultBackoffBase
	}
	if c.Feed.BackoffMax == 0 {
		c.Feed.BackoffMax = DefaultBackoffMax
	}
	if c.Feed.WindowSize == 0 {
		c.Feed.WindowSize = DefaultWindowSize
	}
	if c.Feed.SpreadSample == 0 {
		c.Feed.SpreadSample = DefaultSpreadSample
	}
	if c.Feed.StaggerStep == 0 {
		c.Feed.StaggerStep = DefaultStaggerStep
	}
	if c.Feed.Timeout == 0 {
		c.Feed.Timeout = DefaultFeedTimeout
	}

	// Token defaults
	for i := range c.Tokens {
		if c.Tokens[i].Multiplier == 0 {
			c.Tokens[i].Multiplier = 1
		}
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Auth defaults
	if c.Auth.StateFile == "" {
		c.Auth.StateFile = DefaultAuthStateFile
	}

	// Recorder defaults
	if c.Recorder.BatchSize == 0 {
		c.Recorder.BatchSize = DefaultBatchSize
	}
	if c.Recorder.FlushInterval == 0 {
		c.Recorder.FlushInterval = DefaultFlushInterval
	}
	if c.Recorder.BufferSize == 0 {
		c.Recorder.BufferSize = DefaultBufferSize
	}
	applyDBDefaults(&c.Recorder.Postgres)
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
