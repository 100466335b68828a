package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests mutate the process environment, so none of them run in parallel.

func TestLoad_DefaultsWithRequiredSecrets(t *testing.T) {
	t.Setenv("TASKRELAY_LLM_GEMINI_API_KEY", "test-api-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 3600, cfg.Task.RetentionSeconds)
	assert.Equal(t, time.Hour, cfg.Task.Retention())
	assert.Equal(t, 3, cfg.Webhook.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Webhook.BaseDelay())
	assert.Equal(t, 30*time.Second, cfg.Webhook.AttemptTimeout())
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)
	assert.NotEmpty(t, cfg.LLM.ModelName)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKRELAY_LLM_GEMINI_API_KEY", "test-api-key")
	t.Setenv("TASKRELAY_SERVER_PORT", "9090")
	t.Setenv("TASKRELAY_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TASKRELAY_TASK_RETENTION_SECONDS", "60")
	t.Setenv("TASKRELAY_WEBHOOK_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, time.Minute, cfg.Task.Retention())
	assert.Equal(t, 5, cfg.Webhook.MaxAttempts)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing gemini api key",
			env:  map[string]string{},
		},
		{
			name: "invalid log level",
			env: map[string]string{
				"TASKRELAY_LLM_GEMINI_API_KEY": "test-api-key",
				"TASKRELAY_SERVER_LOG_LEVEL":   "loud",
			},
		},
		{
			name: "port out of range",
			env: map[string]string{
				"TASKRELAY_LLM_GEMINI_API_KEY": "test-api-key",
				"TASKRELAY_SERVER_PORT":        "70000",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
