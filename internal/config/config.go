package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Task    TaskConfig    `mapstructure:"task"    validate:"required"`
	Webhook WebhookConfig `mapstructure:"webhook" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// TaskConfig contains settings for the background task lifecycle.
type TaskConfig struct {
	// RetentionSeconds is how long a terminal task record stays queryable
	// before the reaper removes it from the registry.
	RetentionSeconds int `mapstructure:"retention_seconds" validate:"required,gt=0"`
}

// Retention returns the record retention window as a duration.
func (c TaskConfig) Retention() time.Duration {
	return time.Duration(c.RetentionSeconds) * time.Second
}

// WebhookConfig contains settings for result delivery to caller webhooks.
type WebhookConfig struct {
	// MaxAttempts is the total number of delivery attempts per task result.
	MaxAttempts int `mapstructure:"max_attempts" validate:"required,gt=0"`

	// BaseDelaySeconds is the backoff unit between attempts; the wait before
	// attempt N+1 is BaseDelaySeconds * N.
	BaseDelaySeconds int `mapstructure:"base_delay_seconds" validate:"required,gt=0"`

	// AttemptTimeoutSeconds bounds each individual HTTP POST.
	AttemptTimeoutSeconds int `mapstructure:"attempt_timeout_seconds" validate:"required,gt=0"`
}

// BaseDelay returns the backoff unit as a duration.
func (c WebhookConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelaySeconds) * time.Second
}

// AttemptTimeout returns the per-attempt timeout as a duration.
func (c WebhookConfig) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutSeconds) * time.Second
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"      validate:"required"`
	ModelName         string `mapstructure:"model_name"          validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
