package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// RedisConfig contains the leaderboard cache connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// AuthConfig contains all token validation settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// EngineConfig tunes the progress engine itself.
type EngineConfig struct {
	// QueueSize bounds the mutation queue; submissions beyond it are
	// rejected rather than blocked.
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// FreezeCostCoins is the coin price of one streak freeze.
	FreezeCostCoins int64 `mapstructure:"freeze_cost_coins" validate:"required,gt=0"`

	// FreezeWindowHours is how long an activated freeze stays armed.
	FreezeWindowHours int `mapstructure:"freeze_window_hours" validate:"required,gt=0"`

	// FreezeCoversAnyGap extends freeze protection to absences longer
	// than a single missed day.
	FreezeCoversAnyGap bool `mapstructure:"freeze_covers_any_gap"`
}
