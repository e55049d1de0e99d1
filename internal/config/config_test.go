package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.True(t, cfg.Tools.CacheEnabled)
	assert.Equal(t, 3600, cfg.Tools.CacheTTLSeconds)
	assert.False(t, cfg.Tools.StrictTypes)
	assert.Equal(t, DriverJSON, cfg.Tools.ExecutionLog.Driver)
	assert.Equal(t, 1000, cfg.Tools.ExecutionLog.Retention)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Schedules)
	assert.NoError(t, cfg.Validate())
}

func TestConfigApplyPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/var/lib/barrot"
	cfg.Logging.File = "/tmp/custom.log"
	cfg.ApplyPaths()

	assert.Equal(t, filepath.Join("/var/lib/barrot", "tool_registry.json"), cfg.Tools.RegistryPath)
	assert.Equal(t, filepath.Join("/var/lib/barrot", "execution_log.json"), cfg.Tools.ExecutionLog.Path)
	assert.Equal(t, "/tmp/custom.log", cfg.Logging.File)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"unknown driver", func(c *Config) { c.Tools.ExecutionLog.Driver = "redis" }, "execution log driver"},
		{"negative ttl", func(c *Config) { c.Tools.CacheTTLSeconds = -1 }, "cache_ttl_seconds"},
		{"negative retention", func(c *Config) { c.Tools.ExecutionLog.Retention = -5 }, "retention"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "log level"},
		{"bad metrics addr", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Addr = "nowhere"
		}, "listen address"},
		{"schedule without name", func(c *Config) {
			c.Schedules = []ScheduleConfig{{Cron: "@daily", Tool: "calculator"}}
		}, "name is required"},
		{"schedule without tool", func(c *Config) {
			c.Schedules = []ScheduleConfig{{Name: "a", Cron: "@daily"}}
		}, "tool is required"},
		{"schedule bad cron", func(c *Config) {
			c.Schedules = []ScheduleConfig{{Name: "a", Cron: "61 * * * *", Tool: "calculator"}}
		}, "invalid cron"},
		{"duplicate schedule", func(c *Config) {
			c.Schedules = []ScheduleConfig{
				{Name: "a", Cron: "@daily", Tool: "calculator"},
				{Name: "a", Cron: "@hourly", Tool: "calculator"},
			}
		}, "duplicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid schedules", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.Enabled = true
		cfg.Schedules = []ScheduleConfig{
			{Name: "a", Cron: "*/10 * * * *", Tool: "calculator"},
			{Name: "b", Cron: "@every 30s", Tool: "file_hash"},
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestConfigYAML(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"

	out, err := cfg.YAML()
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: /data")
	assert.Contains(t, out, "cache_ttl_seconds: 3600")
	assert.Contains(t, out, "driver: json")
}
