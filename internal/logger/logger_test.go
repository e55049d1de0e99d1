package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("console only", func(t *testing.T) {
		logger, err := New(Config{Level: "info", Console: true})
		require.NoError(t, err)
		assert.Nil(t, logger.file)
		assert.NoError(t, logger.Close())
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "barrot.log")

		logger, err := New(Config{Level: "debug", File: logFile})
		require.NoError(t, err)

		logger.Info().Str("tool_id", "computation_calculator_1").Msg("Tool registered")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Tool registered")
		assert.Contains(t, string(data), "computation_calculator_1")
	})

	t.Run("installs global logger", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "barrot.log")

		logger, err := New(Config{Level: "info", File: logFile})
		require.NoError(t, err)

		log.Info().Msg("via global")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "via global")
	})

	t.Run("redaction masks parameters", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "barrot.log")

		logger, err := New(Config{Level: "info", File: logFile, Redaction: true})
		require.NoError(t, err)
		require.NotNil(t, logger.redactor)

		logger.Info().
			Interface("parameters", map[string]any{"api_key": "hunter2", "text": "hello"}).
			Msg("Executing tool")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "hunter2")
		assert.Contains(t, string(data), "hello")
	})

	t.Run("level methods respect the configured level", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "barrot.log")

		logger, err := New(Config{Level: "warn", File: logFile})
		require.NoError(t, err)

		logger.Debug().Msg("debug line")
		logger.Info().Msg("info line")
		logger.Warn().Msg("warn line")
		logger.Error().Msg("error line")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "debug line")
		assert.NotContains(t, string(data), "info line")
		assert.Contains(t, string(data), "warn line")
		assert.Contains(t, string(data), "error line")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		logger, err := New(Config{Level: "chatty"})
		require.NoError(t, err)
		assert.Equal(t, zerolog.InfoLevel, logger.Zerolog().GetLevel())
	})
}

func TestComponent(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "barrot.log")
	logger, err := New(Config{Level: "info", File: logFile})
	require.NoError(t, err)

	sched := logger.Component("scheduler")
	sched.Info().Msg("Job scheduled")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"scheduler"`)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Level)
	assert.True(t, cfg.Console)
	assert.True(t, cfg.Redaction)
	assert.Equal(t, 100, cfg.MaxSize)
}
