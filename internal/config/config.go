package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the main barrot configuration
type Config struct {
	// Data directory; relative paths below resolve against it
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// Tools
	Tools ToolsConfig `json:"tools" yaml:"tools" mapstructure:"tools"`

	// Logging
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Metrics
	Metrics MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`

	// Scheduled tool runs
	Schedules []ScheduleConfig `json:"schedules" yaml:"schedules" mapstructure:"schedules"`
}

// ToolsConfig holds registry and executor settings
type ToolsConfig struct {
	RegistryPath    string             `json:"registry_path" yaml:"registry_path" mapstructure:"registry_path"`
	CacheEnabled    bool               `json:"cache_enabled" yaml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheTTLSeconds int                `json:"cache_ttl_seconds" yaml:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds"`
	StrictTypes     bool               `json:"strict_types" yaml:"strict_types" mapstructure:"strict_types"`
	ExecutionLog    ExecutionLogConfig `json:"execution_log" yaml:"execution_log" mapstructure:"execution_log"`
}

// ExecutionLogConfig selects where execution records are kept
type ExecutionLogConfig struct {
	Driver    string `json:"driver" yaml:"driver" mapstructure:"driver"` // json, sqlite
	Path      string `json:"path" yaml:"path" mapstructure:"path"`
	Retention int    `json:"retention" yaml:"retention" mapstructure:"retention"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" yaml:"level" mapstructure:"level"`
	File      string `json:"file" yaml:"file" mapstructure:"file"`
	Console   bool   `json:"console" yaml:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
	MaxSize   int    `json:"max_size" yaml:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" yaml:"max_age" mapstructure:"max_age"`    // days
	Redaction bool   `json:"redaction" yaml:"redaction" mapstructure:"redaction"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" yaml:"addr" mapstructure:"addr"`
}

// ScheduleConfig is one cron-triggered tool run
type ScheduleConfig struct {
	Name       string         `json:"name" yaml:"name" mapstructure:"name"`
	Cron       string         `json:"cron" yaml:"cron" mapstructure:"cron"`
	Tool       string         `json:"tool" yaml:"tool" mapstructure:"tool"`
	Parameters map[string]any `json:"parameters" yaml:"parameters,omitempty" mapstructure:"parameters"`
	UseCache   bool           `json:"use_cache" yaml:"use_cache" mapstructure:"use_cache"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			CacheEnabled:    true,
			CacheTTLSeconds: 3600,
			StrictTypes:     false,
			ExecutionLog: ExecutionLogConfig{
				Driver:    DriverJSON,
				Retention: 1000,
			},
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			MaxSize:   100,
			MaxAge:    7,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
		Schedules: []ScheduleConfig{},
	}
}

// ApplyPaths fills unset file paths from DataDir
func (c *Config) ApplyPaths() {
	if c.Tools.RegistryPath == "" {
		c.Tools.RegistryPath = filepath.Join(c.DataDir, "tool_registry.json")
	}
	if c.Tools.ExecutionLog.Path == "" {
		name := "execution_log.json"
		if c.Tools.ExecutionLog.Driver == DriverSQLite {
			name = "execution_log.db"
		}
		c.Tools.ExecutionLog.Path = filepath.Join(c.DataDir, name)
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(c.DataDir, "barrot.log")
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// YAML renders the config as YAML
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	errs := NewValidator().ValidateConfig(c)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid configuration: %w", errs[0])
}
