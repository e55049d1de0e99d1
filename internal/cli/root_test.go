package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a config file whose data lives in a temp dir
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "barrot.json")

	body := `{"data_dir": "` + filepath.ToSlash(dir) + `", "logging": {"console": false}` + extra + `}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// resetFlags restores every flag of the command tree to its default so
// tests do not leak flag values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// setContext binds ctx to every command of the tree. cobra only hands the
// root context to a subcommand whose context is nil, so a context from an
// earlier run would otherwise stick.
func setContext(cmd *cobra.Command, ctx context.Context) {
	cmd.SetContext(ctx)
	for _, child := range cmd.Commands() {
		setContext(child, ctx)
	}
}

func execute(t *testing.T, ctx context.Context, out *syncBuffer, args ...string) error {
	t.Helper()

	cmd := GetRootCmd()
	resetFlags(cmd)
	setContext(cmd, ctx)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &syncBuffer{}
	err := execute(t, context.Background(), out, args...)
	return out.String(), err
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRootCommand(t *testing.T) {
	t.Run("version flag", func(t *testing.T) {
		output, err := run(t, "--version")
		require.NoError(t, err)

		assert.Contains(t, output, "barrot version")
		assert.Contains(t, output, GetVersion())
	})

	t.Run("help flag", func(t *testing.T) {
		output, err := run(t, "--help")
		require.NoError(t, err)

		assert.Contains(t, output, "barrot")
		assert.Contains(t, output, "registry")
	})

	t.Run("global flags", func(t *testing.T) {
		cmd := GetRootCmd()

		configFlag := cmd.PersistentFlags().Lookup("config")
		require.NotNil(t, configFlag)
		assert.Equal(t, "", configFlag.DefValue)

		logLevelFlag := cmd.PersistentFlags().Lookup("log-level")
		require.NotNil(t, logLevelFlag)
		assert.Equal(t, "info", logLevelFlag.DefValue)
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		path := writeConfig(t, `, "tools": {"execution_log": {"driver": "redis"}}`)

		_, err := run(t, "--config", path, "tools", "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "execution log driver")
	})

	t.Run("invalid log level flag", func(t *testing.T) {
		path := writeConfig(t, "")

		_, err := run(t, "--config", path, "--log-level", "loud", "tools", "list")
		assert.Error(t, err)
	})
}

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	assert.NotEmpty(t, version)
	assert.True(t, strings.HasPrefix(version, "0."))
}
