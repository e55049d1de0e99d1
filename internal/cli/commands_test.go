package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsList(t *testing.T) {
	path := writeConfig(t, "")

	output, err := run(t, "--config", path, "tools", "list")
	require.NoError(t, err)
	for _, name := range []string{"text_processor", "calculator", "json_query", "file_hash", "file_read"} {
		assert.Contains(t, output, name)
	}

	output, err = run(t, "--config", path, "tools", "list", "--category", "computation")
	require.NoError(t, err)
	assert.Contains(t, output, "calculator")
	assert.NotContains(t, output, "text_processor")

	_, err = run(t, "--config", path, "tools", "list", "--category", "magic")
	assert.Error(t, err)
}

func TestToolsSearch(t *testing.T) {
	path := writeConfig(t, "")

	output, err := run(t, "--config", path, "tools", "search", "CALC")
	require.NoError(t, err)
	assert.Contains(t, output, "calculator")

	output, err = run(t, "--config", path, "tools", "search", "calc", "--max-safety", "1")
	require.NoError(t, err)
	assert.Contains(t, output, "No tools found")
}

func TestToolsRun(t *testing.T) {
	path := writeConfig(t, "")

	output, err := run(t, "--config", path, "tools", "run", "text_processor", "text=hello", "operation=upper")
	require.NoError(t, err)
	assert.Equal(t, "HELLO\n", output)

	output, err = run(t, "--config", path, "tools", "run", "calculator", "expression=2 * 21")
	require.NoError(t, err)
	assert.Equal(t, "42\n", output)

	output, err = run(t, "--config", path, "tools", "run", "text_processor", "--params", `{"text":"abc","operation":"reverse"}`)
	require.NoError(t, err)
	assert.Equal(t, "cba\n", output)

	output, err = run(t, "--config", path, "tools", "run", "calculator", "--json", "expression=1+1")
	require.NoError(t, err)
	assert.Contains(t, output, `"success": true`)

	t.Run("unknown tool", func(t *testing.T) {
		_, err := run(t, "--config", path, "tools", "run", "nope")
		require.Error(t, err)
		assert.Equal(t, "Tool nope not found", err.Error())
	})

	t.Run("missing parameter", func(t *testing.T) {
		_, err := run(t, "--config", path, "tools", "run", "text_processor", "operation=upper")
		require.Error(t, err)
		assert.Equal(t, "Missing required parameter: text", err.Error())
	})

	t.Run("malformed parameter", func(t *testing.T) {
		_, err := run(t, "--config", path, "tools", "run", "text_processor", "text")
		assert.Error(t, err)
	})
}

func TestToolsRunPersistsStatistics(t *testing.T) {
	path := writeConfig(t, "")

	_, err := run(t, "--config", path, "tools", "run", "calculator", "expression=1/0")
	require.Error(t, err)
	_, err = run(t, "--config", path, "tools", "run", "calculator", "expression=3")
	require.NoError(t, err)

	reg := toolregistry.New(toolregistry.Options{Path: filepath.Join(filepath.Dir(path), "tool_registry.json")})
	require.NoError(t, reg.Load())
	tool, ok := reg.FindByName("calculator")
	require.True(t, ok)
	assert.Equal(t, 2, tool.UsageCount)
	assert.InDelta(t, 0.5, tool.SuccessRate, 1e-9)
	assert.Equal(t, 5, reg.Count())
}

func TestSelect(t *testing.T) {
	path := writeConfig(t, "")

	output, err := run(t, "--config", path, "select", "calculator")
	require.NoError(t, err)
	assert.Contains(t, output, "Selected: calculator")

	output, err = run(t, "--config", path, "select", "--explain", "process")
	require.NoError(t, err)
	assert.Contains(t, output, "SCORE")
	assert.Contains(t, output, "Selected: text_processor")

	output, err = run(t, "--config", path, "select", "--chain", "calculator", "text")
	require.NoError(t, err)
	assert.Contains(t, output, "1. calculator")
	assert.Contains(t, output, "2. text_processor")

	_, err = run(t, "--config", path, "select", "teleport")
	require.Error(t, err)
	assert.Equal(t, "No suitable tool found", err.Error())
}

func TestAuto(t *testing.T) {
	path := writeConfig(t, "")

	output, err := run(t, "--config", path, "auto", "json", "--params", `{"json":"{\"a\":{\"b\":7}}","path":"a.b"}`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", output)

	output, err = run(t, "--config", path, "auto", "text", "text=123", "operation=upper")
	require.NoError(t, err)
	assert.Equal(t, "123\n", output)

	_, err = run(t, "--config", path, "auto", "teleport")
	require.Error(t, err)
	assert.Equal(t, "No suitable tool found", err.Error())
}

func TestExecutions(t *testing.T) {
	for _, driver := range []string{"json", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			path := writeConfig(t, `, "tools": {"execution_log": {"driver": "`+driver+`"}}`)

			for _, expr := range []string{"1", "2", "3"} {
				_, err := run(t, "--config", path, "tools", "run", "calculator", "expression="+expr)
				require.NoError(t, err)
			}

			output, err := run(t, "--config", path, "executions")
			require.NoError(t, err)
			assert.Equal(t, 4, strings.Count(output, "\n"), "header plus three records")
			assert.Contains(t, output, "exec_1_")
			assert.Contains(t, output, "exec_3_")

			output, err = run(t, "--config", path, "executions", "--limit", "1", "--json")
			require.NoError(t, err)
			assert.Contains(t, output, `"execution_id": "exec_3_`)
			assert.NotContains(t, output, "exec_2_")
		})
	}
}

func TestExecutionsFollow(t *testing.T) {
	path := writeConfig(t, "")
	logPath := filepath.Join(filepath.Dir(path), "execution_log.json")

	// An earlier run must not leave its context on the command.
	_, err := run(t, "--config", path, "executions")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- execute(t, ctx, out, "--config", path, "executions", "--follow")
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "EXECUTION") }, 5*time.Second, 20*time.Millisecond)
	// Let the watcher attach before writing.
	time.Sleep(200 * time.Millisecond)

	reg := toolregistry.New(toolregistry.Options{})
	tool, err := reg.Register("echo", "echo tool", toolregistry.CategorySystem, nil, "str",
		toolregistry.ExecutableFunc(func(ctx context.Context, params map[string]any) (any, error) {
			return "pong", nil
		}), toolregistry.SafetySafe)
	require.NoError(t, err)

	exec := toolexecutor.New(reg, toolexecutor.Options{Store: toolexecutor.NewJSONLogStore(logPath)})
	result := exec.Execute(context.Background(), tool.ID, nil, false)
	require.True(t, result.Success)

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "pong") }, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("executions --follow did not stop")
	}
}

func TestScheduleOnce(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "payload.txt")
	require.NoError(t, os.WriteFile(target, []byte("hello"), 0644))

	path := writeConfig(t, `, "schedules": [
		{"name": "hash", "cron": "*/5 * * * *", "tool": "file_hash", "parameters": {"path": "`+filepath.ToSlash(target)+`"}},
		{"name": "broken", "cron": "@daily", "tool": "calculator", "parameters": {"expression": "1/0"}}
	]`)

	output, err := run(t, "--config", path, "schedule", "--once")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 jobs failed")
	assert.Contains(t, output, "hash: ok")
	assert.Contains(t, output, "broken: failed: division by zero")
}

func TestScheduleRequiresEntries(t *testing.T) {
	path := writeConfig(t, "")

	_, err := run(t, "--config", path, "schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no schedules configured")
}

func TestConfigShow(t *testing.T) {
	path := writeConfig(t, `, "tools": {"strict_types": true}`)

	output, err := run(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "# "+path)
	assert.Contains(t, output, "strict_types: true")
	assert.Contains(t, output, "cache_ttl_seconds: 3600")

	output, err = run(t, "--config", path, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, output, `"strict_types": true`)

	_, err = run(t, "--config", path, "config", "show", "--format", "toml")
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fresh.yaml")
	t.Setenv("BARROT_DATA_DIR", dir)
	t.Setenv("BARROT_LOGGING_CONSOLE", "false")

	cmd := GetRootCmd()
	cmd.SetIn(strings.NewReader("\n\n\n\nsqlite\n\n"))
	defer cmd.SetIn(nil)

	output, err := run(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sqlite")

	_, err = run(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"count=3", "flag=true", "name=alpha beta", "empty=", "code=42"},
		`{"base":"x","count":1}`, map[string]string{"code": "str"})
	require.NoError(t, err)

	assert.Equal(t, float64(3), params["count"], "key=value overrides --params")
	assert.Equal(t, true, params["flag"])
	assert.Equal(t, "alpha beta", params["name"])
	assert.Equal(t, "", params["empty"])
	assert.Equal(t, "x", params["base"])
	assert.Equal(t, "42", params["code"], "declared strings are not decoded")

	_, err = parseParams([]string{"=v"}, "", nil)
	assert.Error(t, err)

	_, err = parseParams(nil, "[1,2]", nil)
	assert.Error(t, err)
}
