package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Application directory name used across all platforms.
const appName = "kbcenter"

// Config file name inside the config directory.
const configFileName = "config.toml"

// State file names under the data directory.
const (
	credentialsFileName = "credentials.json"
	cacheFileName       = "cache.db"
)

// DefaultConfigDir returns the platform-specific directory for config
// files. On Linux it respects XDG_CONFIG_HOME and falls back to
// ~/.config/kbcenter; macOS uses ~/Library/Application Support.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".config", appName)
	}
}

// DefaultDataDir returns the platform-specific directory for state: the
// credentials file, the selection slot, and the response cache. On Linux
// it respects XDG_DATA_HOME; macOS collapses config and data into one
// directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, appName)
		}

		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigPath returns the full path of the config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), configFileName)
}

// CredentialsPath resolves the credentials file location, honoring the
// config override.
func CredentialsPath(cfg *Config) string {
	if cfg.CredentialsPath != "" {
		return cfg.CredentialsPath
	}

	return filepath.Join(DefaultDataDir(), credentialsFileName)
}

// CachePath resolves the response-cache database location, honoring the
// config override.
func CachePath(cfg *Config) string {
	if cfg.CachePath != "" {
		return cfg.CachePath
	}

	return filepath.Join(DefaultDataDir(), cacheFileName)
}
