package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("engine.queue_size", 256)
	v.SetDefault("engine.freeze_cost_coins", 200)
	v.SetDefault("engine.freeze_window_hours", 24)
	v.SetDefault("engine.freeze_covers_any_gap", true)

	// Optionally read config.yaml from the working directory
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Configure environment variables with LINGO_ prefix
	v.SetEnvPrefix("LINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind critical environment variables
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "LINGO_SERVER_PORT"},
		{"server.log_level", "LINGO_SERVER_LOG_LEVEL"},
		{"database.url", "LINGO_DATABASE_URL"},
		{"redis.addr", "LINGO_REDIS_ADDR"},
		{"redis.password", "LINGO_REDIS_PASSWORD"},
		{"redis.db", "LINGO_REDIS_DB"},
		{"auth.jwt_secret", "LINGO_AUTH_JWT_SECRET"},
		{"auth.token_lifetime_minutes", "LINGO_AUTH_TOKEN_LIFETIME_MINUTES"},
		{"engine.queue_size", "LINGO_ENGINE_QUEUE_SIZE"},
		{"engine.freeze_cost_coins", "LINGO_ENGINE_FREEZE_COST_COINS"},
		{"engine.freeze_window_hours", "LINGO_ENGINE_FREEZE_WINDOW_HOURS"},
		{"engine.freeze_covers_any_gap", "LINGO_ENGINE_FREEZE_COVERS_ANY_GAP"},
	}
	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
