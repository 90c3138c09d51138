package config

import "time"

// Config is the root configuration for an alphadash instance.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	AdminAPI AdminAPIConfig `yaml:"admin_api"`
	Feed     FeedConfig     `yaml:"feed"`
	Tokens   []TokenConfig  `yaml:"tokens"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Recorder RecorderConfig `yaml:"recorder"`
}

// InstanceConfig identifies this dashboard instance.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// AdminAPIConfig holds settings for the external admin REST backend
// (airdrops, token configs, alpha insights).
type AdminAPIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// FeedConfig holds per-token trade feed polling settings.
type FeedConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"` // Delay after a successful fetch
	BackoffBase  time.Duration `yaml:"backoff_base"`  // First retry delay unit
	BackoffMax   time.Duration `yaml:"backoff_max"`   // Retry delay ceiling
	WindowSize   int           `yaml:"window_size"`   // Rolling window cap per token
	SpreadSample int           `yaml:"spread_sample"` // Most-recent ticks used for spread
	StaggerStep  time.Duration `yaml:"stagger_step"`  // Default first-fetch offset per column
	Timeout      time.Duration `yaml:"timeout"`       // Per-request timeout
}

// TokenConfig is a fallback feed column used when the admin API is
// unreachable at startup.
type TokenConfig struct {
	Name         string        `yaml:"name"`
	APIURL       string        `yaml:"api_url"`
	StaggerDelay time.Duration `yaml:"stagger_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// ServerConfig holds the dashboard HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// AuthConfig holds the admin gate settings. Secret is a single shared
// password, normally supplied via ${VAR} expansion.
type AuthConfig struct {
	Secret    string `yaml:"secret"`
	StateFile string `yaml:"state_file"` // Persisted remember-me flag
}

// RecorderConfig holds the optional tick archive settings.
type RecorderConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Postgres      DBConfig      `yaml:"postgres"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
