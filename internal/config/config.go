package config

import (
	"os"
	"strconv"

	"rotlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Run      RunConfig `validate:"required"`
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
}

// RunConfig holds experiment execution settings
type RunConfig struct {
	Seed    int64
	Mode    string
	Workers int
}

// DatabaseConfig holds the optional run-archive connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds results-viewer settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	OutDir        string
	ReferenceFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Run: RunConfig{
			Seed:    getEnvInt64OrDefault("ROTLAB_SEED", 42),
			Mode:    getEnvOrDefault("ROTLAB_MODE", "sequential"),
			Workers: getEnvIntOrDefault("ROTLAB_WORKERS", 0),
		},
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Paths: PathConfig{
			OutDir:        getEnvOrDefault("ROTLAB_OUT", "rotation_pack"),
			ReferenceFile: getEnvOrDefault("ROTLAB_REFERENCE", "reference_metrics.json"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	switch config.Run.Mode {
	case "sequential", "parallel":
	default:
		return errors.ConfigInvalid("ROTLAB_MODE must be sequential or parallel")
	}
	if config.Run.Workers < 0 {
		return errors.ConfigInvalid("ROTLAB_WORKERS must be non-negative")
	}
	if config.Paths.OutDir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
