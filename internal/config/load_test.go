package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use t.Setenv, so none of them may run in parallel.

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TAROT_DATABASE_URL", "postgres://localhost:5432/tarot")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "https://api.deepseek.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "deepseek-chat", cfg.LLM.Model)
	assert.Equal(t, 60, cfg.LLM.TimeoutSeconds)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.001)
	assert.Equal(t, 2000, cfg.LLM.MaxTokens)
	assert.Equal(t, 4, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TAROT_DATABASE_URL", "postgres://localhost:5432/tarot")
	t.Setenv("TAROT_SERVER_PORT", "9090")
	t.Setenv("TAROT_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TAROT_LLM_API_KEY", "sk-test")
	t.Setenv("TAROT_LLM_MODEL", "deepseek-reasoner")
	t.Setenv("TAROT_TASK_WORKER_COUNT", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.Model)
	assert.Equal(t, 8, cfg.Task.WorkerCount)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	// TAROT_DATABASE_URL deliberately unset.
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("TAROT_DATABASE_URL", "postgres://localhost:5432/tarot")
	t.Setenv("TAROT_SERVER_LOG_LEVEL", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadRejectsInvalidBaseURL(t *testing.T) {
	t.Setenv("TAROT_DATABASE_URL", "postgres://localhost:5432/tarot")
	t.Setenv("TAROT_LLM_BASE_URL", "not-a-url")

	_, err := Load()
	require.Error(t, err)
}
