package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file; a missing file is not an error, but a malformed
	// one is.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables with the TASKRELAY_ prefix override file values,
	// e.g. TASKRELAY_SERVER_PORT=9090 sets server.port.
	v.SetEnvPrefix("TASKRELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every setting so that a bare
// environment only needs to provide secrets.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("task.retention_seconds", 3600)

	v.SetDefault("webhook.max_attempts", 3)
	v.SetDefault("webhook.base_delay_seconds", 2)
	v.SetDefault("webhook.attempt_timeout_seconds", 30)

	// Registered empty so AutomaticEnv can bind it during Unmarshal; the
	// required validation still rejects a missing key.
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "gemini-2.0-flash")
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay_seconds", 2)
}
