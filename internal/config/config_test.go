package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleConfig = `
llm:
  base_url: https://api.example.com/v1
  api_key: dummy
  model: test-model
  temperature: 0.2
server:
  host: 127.0.0.1
  port: "9090"
  allowed_origins: ["https://app.example.com"]
history:
  driver: sqlite
session:
  idle_ttl: 10m
  sweep_interval: 30s
  max_sessions: 50
log_level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(body); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()
	return tmp.Name()
}

// TestLoad_File verifies that Load unmarshals every section of the yaml file.
func TestLoad_File(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.example.com/v1", cfg.LLM.BaseURL)
	require.Equal(t, "dummy", cfg.LLM.APIKey)
	require.Equal(t, "test-model", cfg.LLM.Model)
	require.InDelta(t, 0.2, cfg.LLM.Temperature, 0.0001)
	require.Equal(t, DefaultSystemPrompt, cfg.LLM.SystemPrompt)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	require.Equal(t, HistoryDriverSQLite, cfg.History.Driver)
	require.Equal(t, 10*time.Minute, cfg.Session.IdleTTL)
	require.Equal(t, 30*time.Second, cfg.Session.SweepInterval)
	require.Equal(t, 50, cfg.Session.MaxSessions)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.together.xyz/v1", cfg.LLM.BaseURL)
	require.Equal(t, "mistralai/Mixtral-8x7B-Instruct-v0.1", cfg.LLM.Model)
	require.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	require.Empty(t, cfg.LLM.APIKey)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, HistoryDriverMemory, cfg.History.Driver)
	require.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	require.Equal(t, time.Minute, cfg.Session.SweepInterval)
	require.Equal(t, 1000, cfg.Session.MaxSessions)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("MINDCARE_LLM_API_KEY", "from-env")
	t.Setenv("MINDCARE_SERVER_PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.LLM.APIKey)
	require.Equal(t, "7000", cfg.Server.Port)
}

func TestLoad_SessionEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, sampleConfig))
	t.Setenv("MINDCARE_SESSION_IDLE_TTL", "2h")
	t.Setenv("MINDCARE_SESSION_MAX_SESSIONS", "5")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2*time.Hour, cfg.Session.IdleTTL)
	require.Equal(t, 5, cfg.Session.MaxSessions)
}

func TestLoad_RejectsNegativeSessionLimits(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "session:\n  max_sessions: -1\n"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnknownHistoryDriver(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "history:\n  driver: postgres\n"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	_, err := Load()
	require.Error(t, err)
}
