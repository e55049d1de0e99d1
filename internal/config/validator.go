package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// Execution log drivers
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateDriver validates the execution log driver
func (v *Validator) ValidateDriver(driver string) error {
	switch driver {
	case DriverJSON, DriverSQLite:
		return nil
	}
	return fmt.Errorf("invalid execution log driver: %s (must be one of: %s, %s)", driver, DriverJSON, DriverSQLite)
}

// ValidateAddr validates a host:port listen address
func (v *Validator) ValidateAddr(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return nil
}

// ValidateCron validates a 5-field cron expression or descriptor
func (v *Validator) ValidateCron(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if cfg.Tools.CacheTTLSeconds < 0 {
		errors = append(errors, fmt.Errorf("tools.cache_ttl_seconds must be >= 0"))
	}
	if err := v.ValidateDriver(cfg.Tools.ExecutionLog.Driver); err != nil {
		errors = append(errors, err)
	}
	if cfg.Tools.ExecutionLog.Retention < 0 {
		errors = append(errors, fmt.Errorf("tools.execution_log.retention must be >= 0"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}
	if cfg.Logging.MaxSize < 0 {
		errors = append(errors, fmt.Errorf("logging.max_size must be >= 0"))
	}

	if cfg.Metrics.Enabled {
		if err := v.ValidateAddr(cfg.Metrics.Addr); err != nil {
			errors = append(errors, err)
		}
	}

	names := make(map[string]bool)
	for i, schedule := range cfg.Schedules {
		if strings.TrimSpace(schedule.Name) == "" {
			errors = append(errors, fmt.Errorf("schedule %d: name is required", i))
		} else if names[schedule.Name] {
			errors = append(errors, fmt.Errorf("schedule %d: duplicate name %s", i, schedule.Name))
		}
		names[schedule.Name] = true

		if strings.TrimSpace(schedule.Tool) == "" {
			errors = append(errors, fmt.Errorf("schedule %d (%s): tool is required", i, schedule.Name))
		}
		if err := v.ValidateCron(schedule.Cron); err != nil {
			errors = append(errors, fmt.Errorf("schedule %d (%s): %w", i, schedule.Name, err))
		}
	}

	return errors
}
