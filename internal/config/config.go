// Package config handles kbcenter's TOML configuration: defaults, file
// loading, environment overrides, validation, and live reload.
package config

import (
	"fmt"
	"time"
)

// Default values for configuration options. These are "layer 0" of the
// override chain (defaults -> config file -> environment variables) and
// work out of the box without any config file.
const (
	defaultAPIBaseURL  = "https://api.kbcenter.example.com"
	defaultLogLevel    = "info"
	defaultCacheMaxAge = "5m"
	defaultSnowWorkers = 4
)

// Config is the top-level configuration.
type Config struct {
	APIBaseURL  string `toml:"api_base_url"`
	LogLevel    string `toml:"log_level"`
	CacheMaxAge string `toml:"cache_max_age"`

	// CredentialsPath and CachePath override the platform-default state
	// locations. Empty means default.
	CredentialsPath string `toml:"credentials_path"`
	CachePath       string `toml:"cache_path"`

	ServiceNow ServiceNowConfig `toml:"servicenow"`
}

// ServiceNowConfig configures the optional ITSM sync target. The password
// is never stored in the config file; PasswordEnv names the environment
// variable holding it.
type ServiceNowConfig struct {
	InstanceURL string `toml:"instance_url"`
	Username    string `toml:"username"`
	PasswordEnv string `toml:"password_env"`
	Workers     int    `toml:"workers"`
}

// DefaultConfig returns a Config populated with all default values. Used
// both as the starting point for TOML decoding (unset fields keep their
// defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:  defaultAPIBaseURL,
		LogLevel:    defaultLogLevel,
		CacheMaxAge: defaultCacheMaxAge,
		ServiceNow: ServiceNowConfig{
			Workers: defaultSnowWorkers,
		},
	}
}

// CacheMaxAgeDuration parses the cache_max_age setting.
func (c *Config) CacheMaxAgeDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.CacheMaxAge)
	if err != nil {
		return 0, fmt.Errorf("config: invalid cache_max_age %q: %w", c.CacheMaxAge, err)
	}

	return d, nil
}

// validLogLevels for validation.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks field consistency. Called after every load and reload;
// a reload that fails validation keeps the previous config in effect.
func Validate(cfg *Config) error {
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("config: api_base_url must not be empty")
	}

	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("config: invalid log_level %q (expected debug, info, warn, or error)", cfg.LogLevel)
	}

	if _, err := cfg.CacheMaxAgeDuration(); err != nil {
		return err
	}

	if cfg.ServiceNow.Workers < 0 {
		return fmt.Errorf("config: servicenow workers must not be negative")
	}

	if cfg.ServiceNow.InstanceURL != "" && cfg.ServiceNow.Username == "" {
		return fmt.Errorf("config: servicenow username required when instance_url is set")
	}

	return nil
}
