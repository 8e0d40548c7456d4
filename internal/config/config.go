// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers defaults, an optional YAML file and VALUATOR_ env vars.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import (
	"fmt"
	"strings"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DatabasePath points at the sqlite catalog database. Empty keeps
	// catalogs in memory.
	DatabasePath string `koanf:"database_path"`

	// CacheSize bounds the valuation result cache; 0 disables eviction.
	CacheSize int `koanf:"cache_size"`

	// DefaultAdminFee is applied when a request omits the admin fee.
	DefaultAdminFee float64 `koanf:"default_admin_fee"`

	// MaxTracks caps the number of tracks accepted in one valuation.
	MaxTracks int `koanf:"max_tracks"`

	// Workers bounds concurrent valuations in a batch; 0 derives it from the CPU count.
	Workers int `koanf:"workers"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		DatabasePath:    "",
		CacheSize:       10_000,
		DefaultAdminFee: 0,
		MaxTracks:       50_000,
		Workers:         0,
	}
}

// Validate checks the values that would otherwise fail at runtime.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultAdminFee < 0 || c.DefaultAdminFee > 100:
		return fmt.Errorf("%w: default_admin_fee must be within [0,100], got %v", ErrInvalidConfig, c.DefaultAdminFee)
	case c.MaxTracks < 0:
		return fmt.Errorf("%w: max_tracks must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
