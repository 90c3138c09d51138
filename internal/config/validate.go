package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.AdminAPI.BaseURL == "" {
		return errors.New("admin_api.base_url is required")
	}
	if c.AdminAPI.MaxRetries < 0 {
		return errors.New("admin_api.max_retries must be >= 0")
	}

	if c.Feed.WindowSize < 1 {
		return errors.New("feed.window_size must be >= 1")
	}
	if c.Feed.SpreadSample < 1 {
		return errors.New("feed.spread_sample must be >= 1")
	}
	if c.Feed.BackoffMax < c.Feed.BackoffBase {
		return fmt.Errorf("feed.backoff_max (%s) cannot be below feed.backoff_base (%s)",
			c.Feed.BackoffMax, c.Feed.BackoffBase)
	}

	for i, tok := range c.Tokens {
		if tok.Name == "" {
			return fmt.Errorf("tokens[%d].name is required", i)
		}
		if tok.APIURL == "" {
			return fmt.Errorf("tokens[%d].api_url is required", i)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}

	if c.Recorder.Enabled {
		if err := c.Recorder.Postgres.validate("recorder.postgres"); err != nil {
			return err
		}
		if c.Recorder.BatchSize < 1 {
			return errors.New("recorder.batch_size must be >= 1")
		}
		if c.Recorder.BufferSize < 1 {
			return errors.New("recorder.buffer_size must be >= 1")
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
