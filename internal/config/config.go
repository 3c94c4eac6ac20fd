package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/samijaber1/alcometer/internal/level"
)

// Config holds server configuration
type Config struct {
	// Server settings
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// History settings. An empty DatabasePath keeps history in memory.
	DatabasePath   string `yaml:"database_path"`
	HistoryQueue   int    `yaml:"history_queue"`
	HistoryWorkers int    `yaml:"history_workers"`

	// Batch settings
	BatchMaxItems    int `yaml:"batch_max_items"`
	BatchConcurrency int `yaml:"batch_concurrency"`

	Thresholds level.Thresholds `yaml:"thresholds"`

	// Logging settings
	LogMode  string `yaml:"log_mode"` // "development" or "production"
	LogLevel string `yaml:"log_level"`

	// Operational settings
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.HistoryQueue <= 0 {
		return fmt.Errorf("history queue size must be positive")
	}

	if c.HistoryWorkers <= 0 {
		return fmt.Errorf("history workers must be positive")
	}

	if c.BatchMaxItems <= 0 || c.BatchConcurrency <= 0 {
		return fmt.Errorf("batch limits must be positive")
	}

	if c.LogMode != "development" && c.LogMode != "production" {
		return fmt.Errorf("log mode must be 'development' or 'production'")
	}

	if _, err := level.NewEngine(c.Thresholds); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}

	return nil
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Port:                    8080,
		Host:                    "0.0.0.0",
		HistoryQueue:            256,
		HistoryWorkers:          1,
		BatchMaxItems:           100,
		BatchConcurrency:        8,
		Thresholds:              level.DefaultThresholds(),
		LogMode:                 "development",
		LogLevel:                "info",
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// Load reads envFile (if it exists) into the environment, then overlays the YAML
// file at path on top of the defaults. ${VAR} references in the YAML are expanded.
func Load(path, envFile string) (Config, error) {
	cfg := DefaultConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
