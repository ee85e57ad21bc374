package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "LOG_LEVEL", "LOG_CONSOLE", "SESSION_TTL", "REPORT_URL", "REPORT_TIMEOUT", "NATS_URL", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
port: "9090"
log_level: debug
sessions:
  ttl: 10m
report:
  url: https://example.com/exec
  timeout: 3s
nats:
  url: nats://localhost:4222
cors:
  allowed_origins:
    - https://game.example
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "https://example.com/exec", cfg.Report.URL)
	assert.Equal(t, 3*time.Second, cfg.Report.Timeout)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, "GAME_RESULTS", cfg.NATS.StreamName, "unset keys keep defaults")
	assert.Equal(t, []string{"https://game.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: \"9090\"\nreport:\n  url: https://file.example\n")
	t.Setenv("PORT", "7070")
	t.Setenv("REPORT_URL", "https://env.example")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("LOG_CONSOLE", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "https://env.example", cfg.Report.URL)
	assert.Equal(t, 90*time.Second, cfg.Sessions.TTL)
	assert.False(t, cfg.ConsoleLog)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_InvalidEnvValuesIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_TTL", "soon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Sessions.TTL)
}

func TestLoad_BadYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: [unclosed")

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg.Port = "http"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Sessions.TTL = 0
	assert.Error(t, cfg.Validate())
}
