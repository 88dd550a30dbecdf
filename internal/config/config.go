package config

import (
	"os"
	"strconv"

	"gammafit/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Estimator EstimatorConfig
}

// DatabaseConfig holds database connection settings. An empty URL means
// persistence is disabled and results are only returned over the API.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool { return c.URL != "" }

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// EstimatorConfig holds sensitivity estimation defaults
type EstimatorConfig struct {
	NSigma          float64
	GammaMin        float64
	BkgSystFraction float64
	BatchWorkers    int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     getEnvOrDefault("DATABASE_URL", ""),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Estimator: EstimatorConfig{
			NSigma:          getEnvFloatOrDefault("SENSITIVITY_N_SIGMA", 5),
			GammaMin:        getEnvFloatOrDefault("SENSITIVITY_GAMMA_MIN", 10),
			BkgSystFraction: getEnvFloatOrDefault("SENSITIVITY_BKG_SYST_FRACTION", 0.05),
			BatchWorkers:    getEnvIntOrDefault("SENSITIVITY_BATCH_WORKERS", 4),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Estimator.NSigma <= 0 {
		return errors.ConfigInvalid("SENSITIVITY_N_SIGMA must be positive")
	}
	if config.Estimator.GammaMin < 0 {
		return errors.ConfigInvalid("SENSITIVITY_GAMMA_MIN must not be negative")
	}
	if config.Estimator.BkgSystFraction < 0 || config.Estimator.BkgSystFraction >= 1 {
		return errors.ConfigInvalid("SENSITIVITY_BKG_SYST_FRACTION must be in [0, 1)")
	}
	if config.Estimator.BatchWorkers < 1 {
		return errors.ConfigInvalid("SENSITIVITY_BATCH_WORKERS must be at least 1")
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
