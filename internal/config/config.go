// Package config defines exporter configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a file and environment variables over those defaults.
// - The API credential itself never lives here, only the name of the
//   environment variable that holds it.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// ClanTag identifies the clan to export, e.g. "#2PP". Required.
	ClanTag string `koanf:"clan_tag"`

	// TokenEnvVar names the environment variable holding the API token.
	TokenEnvVar string `koanf:"token_env_var"`

	// SleepSeconds is the courtesy delay after every real upstream fetch.
	SleepSeconds float64 `koanf:"sleep_seconds"`

	// CacheTTLSeconds bounds how long a cached response stays fresh.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// IncludeWarlog adds the clan war log to the snapshot.
	IncludeWarlog bool `koanf:"include_warlog"`
	WarlogLimit   int  `koanf:"warlog_limit"`

	CacheDir  string `koanf:"cache_dir"`
	OutputDir string `koanf:"output_dir"`

	APIBaseURL            string  `koanf:"api_base_url"`
	RequestTimeoutSeconds int     `koanf:"request_timeout_seconds"`
	MaxRequestsPerSecond  float64 `koanf:"max_requests_per_second"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Addr is the listen address of the serve command.
	Addr string `koanf:"addr"`

	// MetricsTextfile, when set, receives a Prometheus textfile dump after each run.
	MetricsTextfile string `koanf:"metrics_textfile"`

	// SentryDSN enables fatal error reporting when non-empty.
	SentryDSN string `koanf:"sentry_dsn"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		TokenEnvVar:           "COC_API_TOKEN",
		SleepSeconds:          0.25,
		CacheTTLSeconds:       3600,
		WarlogLimit:           25,
		CacheDir:              "cache",
		OutputDir:             "outputs",
		APIBaseURL:            "https://api.clashofclans.com/v1",
		RequestTimeoutSeconds: 20,
		MaxRequestsPerSecond:  10,
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8000",
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ClanTag) == "" {
		return fmt.Errorf("%w: clan_tag", ErrMissingField)
	}
	if strings.TrimSpace(c.TokenEnvVar) == "" {
		return fmt.Errorf("%w: token_env_var", ErrMissingField)
	}
	switch {
	case c.SleepSeconds < 0:
		return fmt.Errorf("%w: sleep_seconds must not be negative", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.WarlogLimit <= 0:
		return fmt.Errorf("%w: warlog_limit must be positive", ErrInvalidConfig)
	case c.RequestTimeoutSeconds <= 0:
		return fmt.Errorf("%w: request_timeout_seconds must be positive", ErrInvalidConfig)
	case c.MaxRequestsPerSecond < 0:
		return fmt.Errorf("%w: max_requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Sleep returns the inter-request delay.
func (c *Config) Sleep() time.Duration {
	return time.Duration(c.SleepSeconds * float64(time.Second))
}

// CacheTTL returns the cache freshness window.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
