// Package config loads the service configuration: a YAML file plus a
// small set of environment overrides (a local .env file is honored when
// present).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Server   ServerConfig   `yaml:"server"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Poller   PollerConfig   `yaml:"poller"`
	Recorder RecorderConfig `yaml:"recorder"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type UpstreamConfig struct {
	// BaseURL is the prices API root, e.g. "https://api.precioluzhoy.app/api".
	BaseURL string `yaml:"base_url"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
	// Mode is "debug" or "release" (gin semantics).
	Mode string `yaml:"mode"`
	// AllowedOrigins feeds the CORS middleware; empty means allow all.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MaxRetries    int           `yaml:"max_retries"`
	BaseDelay     time.Duration `yaml:"base_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
	RatePerSecond float64       `yaml:"rate_per_second"`
	Burst         int           `yaml:"burst"`
}

type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	// RefreshCron re-fetches today on a schedule (6-field cron spec).
	RefreshCron string `yaml:"refresh_cron"`
	// TomorrowCron probes for next-day publication; the upstream starts
	// publishing around 20:15 Europe/Madrid.
	TomorrowCron string `yaml:"tomorrow_cron"`
}

type RecorderConfig struct {
	// SQLitePath enables the price history recorder when non-empty.
	SQLitePath string `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads path (optional), applies env overrides and defaults, and
// validates. An empty path yields a config built purely from env and
// defaults.
func Load(path string) (*Config, error) {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	var c Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRICES_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		c.Server.Listen = ":" + v
	}
	if os.Getenv("API_ENV") == "production" {
		c.Server.Mode = "release"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("RECORDER_SQLITE_PATH"); v != "" {
		c.Recorder.SQLitePath = v
	}
}

func (c *Config) applyDefaults() {
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = "https://api.precioluzhoy.app/api"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = 8 * time.Second
	}
	if c.Fetch.MaxRetries <= 0 {
		c.Fetch.MaxRetries = 3
	}
	if c.Fetch.BaseDelay <= 0 {
		c.Fetch.BaseDelay = time.Second
	}
	if c.Fetch.MaxDelay <= 0 {
		c.Fetch.MaxDelay = 8 * time.Second
	}
	if c.Poller.Interval <= 0 {
		c.Poller.Interval = 15 * time.Second
	}
	if c.Poller.RefreshCron == "" {
		c.Poller.RefreshCron = "0 */5 * * * *"
	}
	if c.Poller.TomorrowCron == "" {
		// Every minute from 20:00 to 21:59 Madrid time.
		c.Poller.TomorrowCron = "0 * 20-21 * * *"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate rejects configurations the daemons cannot run with.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("server.mode must be debug or release, got %q", c.Server.Mode)
	}
	if c.Fetch.MaxDelay < c.Fetch.BaseDelay {
		return errors.New("fetch.max_delay must be >= fetch.base_delay")
	}
	if c.Poller.Interval < time.Second {
		return errors.New("poller.interval must be at least 1s")
	}
	return nil
}
