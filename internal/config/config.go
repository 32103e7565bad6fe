package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	TelegramToken     string
	DatabaseURL       string
	StorageDriver     string
	LogLevel          string
	PrometheusPort    string
	Port              string
	MigrationsEnabled bool
}

// Load loads configuration from a .env file, if present, and environment
// variables. Variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StorageDriver:  strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", StoragePostgres)),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		PrometheusPort: getEnvOrDefault("PROMETHEUS_PORT", "9090"),
		Port:           getEnvOrDefault("PORT", "8080"),
	}

	var err error
	if cfg.MigrationsEnabled, err = strconv.ParseBool(getEnvOrDefault("MIGRATIONS_ENABLED", "true")); err != nil {
		return nil, fmt.Errorf("MIGRATIONS_ENABLED must be a boolean: %w", err)
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

// BotEnabled reports whether the Telegram bot should run.
func (c *Config) BotEnabled() bool {
	return c.TelegramToken != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
