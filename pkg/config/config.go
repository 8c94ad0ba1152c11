package config

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete configuration for the tinkerfai client.
type Config struct {
	API     APIConfig     `koanf:"api"     validate:"required"`
	Session SessionConfig `koanf:"session"`
	CLI     CLIConfig     `koanf:"cli"`
	Runtime RuntimeConfig `koanf:"runtime" validate:"required"`
}

// APIConfig describes how the client reaches the learning platform API.
type APIConfig struct {
	BaseURL       string        `koanf:"base_url"       validate:"required,api_url" env:"TINKERFAI_API_URL"`
	Timeout       time.Duration `koanf:"timeout"        validate:"min=0"            env:"TINKERFAI_API_TIMEOUT"`
	UploadTimeout time.Duration `koanf:"upload_timeout" validate:"min=0"            env:"TINKERFAI_UPLOAD_TIMEOUT"`
	UserAgent     string        `koanf:"user_agent"                                 env:"TINKERFAI_USER_AGENT"`
}

// SessionConfig controls where tokens and the user profile are persisted.
type SessionConfig struct {
	Path string `koanf:"path" env:"TINKERFAI_SESSION_PATH"`
}

// CLIConfig contains presentation settings.
type CLIConfig struct {
	Mode        string `koanf:"mode"        validate:"oneof=auto json tui" env:"TINKERFAI_MODE"`
	NoColor     bool   `koanf:"no_color"                                   env:"TINKERFAI_NO_COLOR"`
	Interactive bool   `koanf:"interactive"                                env:"TINKERFAI_INTERACTIVE"`
}

// RuntimeConfig contains logging behavior.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled" env:"TINKERFAI_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                  env:"TINKERFAI_LOG_JSON"`
	LogSource bool   `koanf:"log_source"                                                env:"TINKERFAI_LOG_SOURCE"`
}

// Service defines the configuration management service interface.
type Service interface {
	// Load loads configuration from the specified sources with precedence order.
	Load(ctx context.Context, sources ...Source) (*Config, error)
	// Validate checks if the configuration meets all validation requirements.
	Validate(config *Config) error
	// GetSource returns the source type that provided a specific configuration key.
	GetSource(key string) SourceType
}

// Source defines the interface for configuration sources.
type Source interface {
	Load() (map[string]any, error)
	Type() SourceType
}

// SourceType identifies the type of configuration source.
type SourceType string

const (
	SourceCLI     SourceType = "cli"
	SourceYAML    SourceType = "yaml"
	SourceEnv     SourceType = "env"
	SourceDefault SourceType = "default"
)

// Metadata records where each loaded key came from.
type Metadata struct {
	Sources  map[string]SourceType
	LoadedAt time.Time
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000/api",
			Timeout:       30 * time.Second,
			UploadTimeout: 5 * time.Minute,
			UserAgent:     "tinkerfai-cli",
		},
		Session: SessionConfig{
			Path: DefaultSessionPath(),
		},
		CLI: CLIConfig{
			Mode: "auto",
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
	}
}

// DefaultSessionPath places the session file in the user's config directory.
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".tinkerfai", "session.json")
	}
	return filepath.Join(dir, "tinkerfai", "session.json")
}
