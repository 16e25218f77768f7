package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), configFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	maxAge, err := cfg.CacheMaxAgeDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, maxAge)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api_base_url = "https://kb.internal.example.com"
log_level = "debug"
cache_max_age = "30s"

[servicenow]
instance_url = "https://dev1234.service-now.com"
username = "sync-user"
password_env = "SNOW_PASSWORD"
workers = 8
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://kb.internal.example.com", cfg.APIBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "30s", cfg.CacheMaxAge)
	assert.Equal(t, "sync-user", cfg.ServiceNow.Username)
	assert.Equal(t, 8, cfg.ServiceNow.Workers)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `log_level = "warn"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, defaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, defaultSnowWorkers, cfg.ServiceNow.Workers)
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `log_levle = "debug"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
	assert.Contains(t, err.Error(), "log_levle")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `log_level = "trace"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoad_SnowUsernameRequired(t *testing.T) {
	path := writeConfig(t, `
[servicenow]
instance_url = "https://dev1234.service-now.com"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, defaultAPIBaseURL, cfg.APIBaseURL)
}

func TestLoadOrDefault_BrokenFileIsError(t *testing.T) {
	path := writeConfig(t, `not valid toml ===`)

	_, err := LoadOrDefault(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(envAPIBaseURL, "https://env.example.com")
	t.Setenv(envLogLevel, "error")

	path := writeConfig(t, `log_level = "debug"`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, "error", cfg.LogLevel, "env must win over file")
}

func TestConfigPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", ConfigPathFromEnv())
}

func TestCredentialsPath_Override(t *testing.T) {
	cfg := DefaultConfig()
	assert.Contains(t, CredentialsPath(cfg), credentialsFileName)

	cfg.CredentialsPath = "/tmp/creds.json"
	assert.Equal(t, "/tmp/creds.json", CredentialsPath(cfg))
}

func TestHolder(t *testing.T) {
	first := DefaultConfig()
	holder := NewHolder(first)
	assert.Same(t, first, holder.Get())

	second := DefaultConfig()
	second.LogLevel = "debug"
	holder.Set(second)
	assert.Same(t, second, holder.Get())
}
