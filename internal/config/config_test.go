package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = 0 }},
		{"port too high", func(c *Config) { c.Port = 70000 }},
		{"no queue", func(c *Config) { c.HistoryQueue = 0 }},
		{"no workers", func(c *Config) { c.HistoryWorkers = 0 }},
		{"no batch", func(c *Config) { c.BatchMaxItems = 0 }},
		{"bad log mode", func(c *Config) { c.LogMode = "verbose" }},
		{"bad thresholds", func(c *Config) { c.Thresholds.Severe = 0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("ALCOMETER_TEST_DB=/tmp/history.db\n"), 0o644))

	configFile := filepath.Join(dir, "config.yaml")
	yamlData := `
port: 9090
database_path: ${ALCOMETER_TEST_DB}
thresholds:
  limit: 0.2
  severe: 1.0
log_mode: production
graceful_shutdown_timeout: 5s
`
	require.NoError(t, os.WriteFile(configFile, []byte(yamlData), 0o644))
	t.Cleanup(func() { os.Unsetenv("ALCOMETER_TEST_DB") })

	cfg, err := Load(configFile, envFile)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/history.db", cfg.DatabasePath)
	assert.Equal(t, 0.2, cfg.Thresholds.Limit)
	assert.Equal(t, 1.0, cfg.Thresholds.Severe)
	assert.Equal(t, "production", cfg.LogMode)
	assert.Equal(t, 5*time.Second, cfg.GracefulShutdownTimeout)
	// untouched fields keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 256, cfg.HistoryQueue)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "")
	assert.Error(t, err)
}
