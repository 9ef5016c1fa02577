package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile     string `envconfig:"LOG_FILE" default:"stockwire.log"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	APIHost         string        `envconfig:"API_HOST" default:"0.0.0.0"`
	APIPort         string        `envconfig:"API_PORT" default:"8000"`
	APIReadTimeout  time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	APIWriteTimeout time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`

	// Storage is optional; empty URLs disable the backend.
	RedisURL         string        `envconfig:"REDIS_URL"`
	SnapshotKey      string        `envconfig:"SNAPSHOT_KEY" default:"stockwire:snapshot"`
	SnapshotTTL      time.Duration `envconfig:"SNAPSHOT_TTL" default:"24h"`
	DatabaseURL      string        `envconfig:"DATABASE_URL"`
	DatabaseMaxConns int32         `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	SimInterval         time.Duration `envconfig:"SIM_INTERVAL" default:"2s"`
	MovingAverageWindow int           `envconfig:"MOVING_AVERAGE_WINDOW" default:"5"`
	Currency            string        `envconfig:"CURRENCY" default:"USD"`
}

// Development reports whether the process runs with development logging.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// Addr is the API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.APIHost, c.APIPort)
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.MovingAverageWindow <= 0 {
		return nil, fmt.Errorf("load config: MOVING_AVERAGE_WINDOW must be positive, got %d", cfg.MovingAverageWindow)
	}
	return &cfg, nil
}
