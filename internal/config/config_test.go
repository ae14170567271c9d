package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "remindd", cfg.Database.DBName)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 720*time.Hour, cfg.Scheduler.LookAhead)
	assert.Equal(t, "@every 5m", cfg.Scheduler.SweepSchedule)
	assert.Equal(t, time.Second, cfg.Scheduler.DispatchInterval)
}

func TestLoadFromFile(t *testing.T) {
	content := []byte(`
server:
  port: 9090
auth:
  api_token: secret
scheduler:
  look_ahead: 48h
  sweep_schedule: "@every 1m"
`)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Auth.APIToken)
	assert.Equal(t, 48*time.Hour, cfg.Scheduler.LookAhead)
	assert.Equal(t, "@every 1m", cfg.Scheduler.SweepSchedule)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o600))

	_, err := LoadWithPath(path)
	assert.Error(t, err)
}
