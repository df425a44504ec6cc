package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "tempora", cfg.Auth.JWT.Issuer)
	require.Equal(t, 15*time.Minute, cfg.Auth.JWT.TTL)
	require.True(t, cfg.Reminders.Enabled)
	require.Equal(t, "* * * * *", cfg.Reminders.Schedule)
	require.Equal(t, 10*time.Second, cfg.Reminders.DispatchTimeout)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 9100
  log_level: debug

reminders:
  enabled: false
  schedule: "*/5 * * * *"
  dispatch_timeout: 30s

auth:
  jwt:
    secret: file-secret
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9100, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.False(t, cfg.Reminders.Enabled)
	require.Equal(t, "*/5 * * * *", cfg.Reminders.Schedule)
	require.Equal(t, 30*time.Second, cfg.Reminders.DispatchTimeout)
	require.Equal(t, "file-secret", cfg.Auth.JWT.Secret)

	// Defaults still apply for untouched sections.
	require.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("TEMPORA_SERVER_PORT", "9200")
	t.Setenv("TEMPORA_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
}
