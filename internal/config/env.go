package config

import "os"

// Environment variable names. Environment overrides take precedence over
// the config file, which takes precedence over defaults.
const (
	EnvConfigPath = "KBCENTER_CONFIG"
	envAPIBaseURL = "KBCENTER_API_URL"
	envLogLevel   = "KBCENTER_LOG_LEVEL"
	envCredsPath  = "KBCENTER_CREDENTIALS_PATH"
	envCachePath  = "KBCENTER_CACHE_PATH"
)

// ConfigPathFromEnv returns the config file path override, or the
// platform default when unset.
func ConfigPathFromEnv() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}

	return DefaultConfigPath()
}

// applyEnvOverrides layers environment variables on top of cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envAPIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}

	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv(envCredsPath); v != "" {
		cfg.CredentialsPath = v
	}

	if v := os.Getenv(envCachePath); v != "" {
		cfg.CachePath = v
	}
}
