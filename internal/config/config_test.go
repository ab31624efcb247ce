package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "healthmon", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 0, cfg.Redis.DB)

	assert.Equal(t, "healthmon:vitals:stream", cfg.Monitor.Stream)
	assert.Equal(t, "healthmon-monitor-group", cfg.Monitor.ConsumerGroup)
	assert.Equal(t, 10, cfg.Monitor.BatchSize)
	assert.Equal(t, "healthmon:vitals:latest", cfg.Monitor.Cache.LatestKey)
	assert.Equal(t, "healthmon:alerts:recent", cfg.Monitor.Cache.AlertsKey)
	assert.Equal(t, 30, cfg.Monitor.ReminderIntervalSeconds)

	assert.True(t, cfg.Alerts.Enabled)
	assert.Equal(t, 300, cfg.Alerts.CooldownSeconds)
	assert.Equal(t, 0.5, cfg.Alerts.CriticalTier)
	assert.Equal(t, 0.2, cfg.Alerts.WarningTier)
	assert.Equal(t, 100, cfg.Alerts.HistoryCap)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_HOST", "test-host")
	os.Setenv("DB_USER", "test-user")
	os.Setenv("REDIS_ADDR", "test-redis:6380")
	os.Setenv("VITALS_STREAM", "test:stream")
	os.Setenv("ALERTS_ENABLED", "false")
	os.Setenv("ALERTS_COOLDOWN_SECONDS", "60")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("LOG_LEVEL", "debug")
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, "test-user", cfg.Database.User)
	assert.Equal(t, "test-redis:6380", cfg.Redis.Addr)
	assert.Equal(t, "test:stream", cfg.Monitor.Stream)
	assert.False(t, cfg.Alerts.Enabled)
	assert.Equal(t, 60, cfg.Alerts.CooldownSeconds)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFileOverriddenByEnv(t *testing.T) {
	os.Clearenv()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
database:
  host: yaml-host
  port: 5433
alerts:
  cooldown_seconds: 120
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	os.Setenv("CONFIG_FILE", path)
	os.Setenv("DB_HOST", "env-host")
	defer os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)

	// Env wins over file; file wins over defaults.
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, 120, cfg.Alerts.CooldownSeconds)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	os.Clearenv()
	os.Setenv("CONFIG_FILE", "/does/not/exist.yaml")
	defer os.Clearenv()

	_, err := Load()
	assert.Error(t, err)
}
