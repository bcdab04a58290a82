package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "data/docuflow.db", cfg.Database.Path)
	assert.Equal(t, "v1.0.0", cfg.AI.PromptVersion)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.DefaultModels["openai"])
	assert.Equal(t, 30*time.Second, cfg.Workers.BackoffBase)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 3000
database:
  path: /tmp/test.db
workers:
  batch_size: 25
  backoff_base: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.Workers.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.Workers.BackoffBase)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "data/test.db"},
			AI:       AIConfig{PromptVersion: "v1.0.0"},
			Workers:  WorkersConfig{BatchSize: 10, PollInterval: 5 * time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"missing prompt version", func(c *Config) { c.AI.PromptVersion = "" }, true},
		{"zero batch size", func(c *Config) { c.Workers.BatchSize = 0 }, true},
		{"zero poll interval", func(c *Config) { c.Workers.PollInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
