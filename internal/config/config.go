// Package config loads rgportal settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environments.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds all settings parsed from environment variables.
type Config struct {
	APIBaseURL     string        `env:"RG_API_BASE_URL" envDefault:"http://localhost/api/v1"`
	Env            string        `env:"RG_ENV" envDefault:"production"`
	RequestTimeout time.Duration `env:"RG_REQUEST_TIMEOUT" envDefault:"30s"`

	// State
	StateDir    string `env:"RG_STATE_DIR"`
	RedisURL    string `env:"RG_REDIS_URL"`
	RedisPrefix string `env:"RG_REDIS_PREFIX" envDefault:"rgportal:"`

	// Display
	Language   string `env:"RG_LANGUAGE" envDefault:"fr"`
	SupportURL string `env:"RG_SUPPORT_URL" envDefault:"https://support.example.com/responsible-gaming"`

	LogLevel string `env:"RG_LOG_LEVEL" envDefault:"info"`
}

// Load parses environment variables into a Config. An unset state dir
// defaults to ~/.rgportal.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.StateDir = filepath.Join(home, ".rgportal")
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("RG_API_BASE_URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	switch c.Env {
	case EnvProduction, EnvDevelopment:
	default:
		return fmt.Errorf("RG_ENV must be %q or %q, got %q", EnvProduction, EnvDevelopment, c.Env)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("RG_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.RedisURL != "" && !strings.HasPrefix(c.RedisURL, "redis://") && !strings.HasPrefix(c.RedisURL, "rediss://") {
		return fmt.Errorf("RG_REDIS_URL must start with redis:// or rediss://")
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return fmt.Errorf("RG_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel)
	}
	return nil
}

// IsDevelopment reports whether the backend may echo passcodes.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// StatePath is the session state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.json")
}

// LogPath is the log file. The TUI owns stdout, so logs never go there.
func (c *Config) LogPath() string {
	return filepath.Join(c.StateDir, "rgportal.log")
}
