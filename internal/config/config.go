package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"        validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database"      validate:"required"`
	Auth          AuthConfig          `mapstructure:"auth"          validate:"required"`
	Storage       StorageConfig       `mapstructure:"storage"       validate:"required"`
	Transcription TranscriptionConfig `mapstructure:"transcription" validate:"required"`
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

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime in minutes.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the refresh token lifetime in minutes.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
}

// StorageConfig contains settings for uploaded recording files.
type StorageConfig struct {
	// UploadDir is the directory uploaded audio files are written to.
	// It is created on startup if it does not exist.
	UploadDir string `mapstructure:"upload_dir" validate:"required"`

	// MaxUploadBytes caps the size of a single uploaded file.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// TranscriptionConfig contains settings for the remote transcription provider.
// It is passed explicitly to the provider client at construction so that
// multiple provider configurations (e.g. per-tenant credentials) remain
// possible.
type TranscriptionConfig struct {
	APIKey  string `mapstructure:"api_key"  validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Language is the locale sent with every transcription request.
	Language string `mapstructure:"language" validate:"required"`

	// Service selects the provider's service tier.
	Service string `mapstructure:"service" validate:"required"`

	// RequestTimeoutSeconds bounds each individual provider HTTP call.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}
