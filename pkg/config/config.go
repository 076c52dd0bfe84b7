// Package config loads client configuration from the environment, with an
// optional .env file for development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig locates the job-queue server.
type ServerConfig struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

// PollConfig controls the poll cycle.
type PollConfig struct {
	Interval time.Duration
}

// StorageConfig locates the local database and bounds retention.
type StorageConfig struct {
	DatabasePath    string
	MetricRetention time.Duration
	SweepCron       string
	Compact         bool
}

// Config is the full client configuration.
type Config struct {
	Server      ServerConfig
	Poll        PollConfig
	Storage     StorageConfig
	LogLevel    string
	Environment string
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			BaseURL:  getEnv("SERVER_BASE_URL", "http://localhost:3001/api"),
			APIToken: getEnv("SERVER_API_TOKEN", ""),
			Timeout:  getDurationEnv("SERVER_TIMEOUT", 10*time.Second),
		},
		Poll: PollConfig{
			Interval: getDurationEnv("POLL_INTERVAL", 5*time.Second),
		},
		Storage: StorageConfig{
			DatabasePath:    getEnv("STORAGE_DATABASE_PATH", "queuepulse.db"),
			MetricRetention: getDurationEnv("STORAGE_METRIC_RETENTION", 7*24*time.Hour),
			SweepCron:       getEnv("STORAGE_SWEEP_CRON", "0 3 * * *"),
			Compact:         getBoolEnv("STORAGE_COMPACT", true),
		},
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations the poller cannot run with.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL is required")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Storage.MetricRetention < 0 {
		return fmt.Errorf("metric retention must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
