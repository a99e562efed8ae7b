package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/upb/fbenum/enum"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the complete library configuration
type Config struct {
	Enum          EnumConfig
	Binding       BindingConfig
	Observability ObservabilityConfig
	Environment   string
}

// EnumConfig holds the settings of the default fallback adapter
type EnumConfig struct {
	UnknownName string
	TypeCasting bool
}

// BindingConfig holds payload decoding limits
type BindingConfig struct {
	MaxBodyBytes          int64
	DisallowUnknownFields bool
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or console
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	return NewWithEnvFiles(ctx, ".env")
}

// NewWithEnvFiles loads the given dotenv files, when present, before reading
// the environment. Variables already set in the environment win.
func NewWithEnvFiles(ctx context.Context, files ...string) (*Config, error) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Enum: EnumConfig{
			UnknownName: getEnv("FBENUM_UNKNOWN_NAME", enum.DefaultUnknownName),
			TypeCasting: getEnvAsBool("FBENUM_TYPE_CASTING", true),
		},
		Binding: BindingConfig{
			MaxBodyBytes:          getEnvAsInt64("BINDING_MAX_BODY_BYTES", 1<<20),
			DisallowUnknownFields: getEnvAsBool("BINDING_DISALLOW_UNKNOWN_FIELDS", false),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	name := c.Enum.UnknownName
	if name == "" {
		return fmt.Errorf("unknown name is required")
	}
	if strings.ContainsAny(name, " \t\r\n") {
		return fmt.Errorf("unknown name %q must not contain whitespace", name)
	}

	if c.Binding.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", c.Binding.MaxBodyBytes)
	}

	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	if _, err := zapcore.ParseLevel(c.Observability.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.Observability.LogFormat {
	case "json", "console", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Observability.LogFormat)
	}

	// Unknown payload fields must be rejected in production
	if c.IsProduction() && !c.Binding.DisallowUnknownFields {
		return fmt.Errorf("BINDING_DISALLOW_UNKNOWN_FIELDS must be enabled in production")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// AdapterOptions returns the options for the configured fallback adapter
func (c *EnumConfig) AdapterOptions(logger *zap.Logger) []enum.Option {
	return []enum.Option{
		enum.WithUnknownName(c.UnknownName),
		enum.WithTypeCasting(c.TypeCasting),
		enum.WithLogger(logger),
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
