package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Progress ProgressConfig `mapstructure:"progress"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// ProgressConfig tunes the lifecycle engine.
type ProgressConfig struct {
	// AutoCompleteActive switches session start from rejecting a duplicate
	// active session to force-completing it first (legacy behavior).
	AutoCompleteActive bool `mapstructure:"auto_complete_active"`

	// SaveRetries bounds the re-read-and-reapply attempts on a storage
	// version conflict.
	SaveRetries int `mapstructure:"save_retries" validate:"gte=1,lte=10"`
}
