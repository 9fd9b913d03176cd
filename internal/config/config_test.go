package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Breaker.OpenTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("EMAIL_USER", "clinic@example.com")
	t.Setenv("EMAIL_PASS", "app-password")
	t.Setenv("SMTP_HOST", "relay.example.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "clinic@example.com", cfg.Email.User)
	assert.Equal(t, "app-password", cfg.Email.Pass)
	assert.Equal(t, "relay.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.NoError(t, cfg.Email.Validate())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notifier.yaml")
	content := `
smtp:
  host: mail.internal
  port: 25
breaker:
  max_failures: 2
  open_timeout: 1m
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mail.internal", cfg.SMTP.Host)
	assert.Equal(t, 25, cfg.SMTP.Port)
	assert.Equal(t, uint32(2), cfg.Breaker.MaxFailures)
	assert.Equal(t, time.Minute, cfg.Breaker.OpenTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port out of range", key: "SMTP_PORT", val: "70000"},
		{name: "bad host", key: "SMTP_HOST", val: "not a host"},
		{name: "bad log level", key: "LOG_LEVEL", val: "verbose"},
		{name: "non numeric server port", key: "SERVER_PORT", val: "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig("")
			assert.Error(t, err)
		})
	}
}

func TestEmailConfig_Validate(t *testing.T) {
	assert.ErrorIs(t, EmailConfig{Pass: "x"}.Validate(), ErrMissingSenderAddress)
	assert.ErrorIs(t, EmailConfig{User: "   ", Pass: "x"}.Validate(), ErrMissingSenderAddress)
	assert.ErrorIs(t, EmailConfig{User: "a@b.c"}.Validate(), ErrMissingSenderPassword)
	assert.NoError(t, EmailConfig{User: "a@b.c", Pass: "x"}.Validate())
}
