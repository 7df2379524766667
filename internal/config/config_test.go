package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/relay_test")
	t.Setenv("META_VERIFY_TOKEN", "verify-me")
	t.Setenv("META_APP_SECRET", "app-secret")
	t.Setenv("GEMINI_API_KEYS", "key-a, key-b")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10, cfg.WorkerCount)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, []string{"key-a", "key-b"}, cfg.GeminiAPIKeys)
}

func TestLoadConfigMissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigMissingVerifyToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("META_VERIFY_TOKEN", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigMissingAPIKeys(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_API_KEYS", "")

	_, err := LoadConfig()
	require.Error(t, err)
}
