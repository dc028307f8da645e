package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of all configuration environment variables, e.g.
// DOSEWISE_SERVER_PORT or DOSEWISE_DATABASE_URL.
const envPrefix = "DOSEWISE"

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Nested keys map to env vars with underscores:
	// generation.window_days -> DOSEWISE_GENERATION_WINDOW_DAYS.
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without a default are invisible to Unmarshal unless bound
	// explicitly.
	if err := v.BindEnv("database.url"); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	// An on-disk config file is optional; env vars alone are a complete
	// configuration.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value of every setting that has one.
// Database URL deliberately has no default: it must be supplied explicitly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("generation.window_days", 7)
	v.SetDefault("generation.horizon_days", 2)
	v.SetDefault("generation.cron", "0 3 * * *")
	v.SetDefault("generation.sweep_cron", "30 3 * * *")
	v.SetDefault("generation.sweep_grace_hours", 12)

	v.SetDefault("dispatch.interval_seconds", 60)
	v.SetDefault("dispatch.max_attempts", 3)
	v.SetDefault("dispatch.worker_count", 4)
	v.SetDefault("dispatch.batch_size", 500)
}
