package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harun/barrot/internal/config"
	"github.com/harun/barrot/internal/metrics"
	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/harun/barrot/pkg/toolmanager"
	"github.com/harun/barrot/pkg/toolregistry"
)

// openLogStore returns the execution log store selected by the config
func openLogStore(c *config.Config) (toolexecutor.LogStore, error) {
	switch c.Tools.ExecutionLog.Driver {
	case config.DriverSQLite:
		return toolexecutor.NewSQLiteLogStore(c.Tools.ExecutionLog.Path, c.Tools.ExecutionLog.Retention)
	default:
		return toolexecutor.NewJSONLogStore(c.Tools.ExecutionLog.Path), nil
	}
}

// openManager builds a manager with the standard tools registered. The
// metrics collector is always attached; it is only served by `schedule`.
func openManager(c *config.Config) (*toolmanager.Manager, *metrics.Metrics, error) {
	store, err := openLogStore(c)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open execution log: %w", err)
	}

	m := metrics.NewMetrics()
	manager, err := toolmanager.New(toolmanager.Options{
		RegistryPath: c.Tools.RegistryPath,
		Executor: toolexecutor.Options{
			CacheEnabled: c.Tools.CacheEnabled,
			CacheTTL:     time.Duration(c.Tools.CacheTTLSeconds) * time.Second,
			Store:        store,
			Retention:    c.Tools.ExecutionLog.Retention,
			StrictTypes:  c.Tools.StrictTypes,
			Recorder:     m,
		},
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	if err := manager.RegisterStandardTools(); err != nil {
		manager.Close()
		return nil, nil, err
	}
	m.SetToolsRegistered(manager.Registry().Count())

	return manager, m, nil
}

// parseParams merges a JSON object with key=value arguments. Values of
// parameters declared "str" in types stay strings. Other values that parse as
// JSON keep their type; anything else is a string.
func parseParams(args []string, raw string, types map[string]string) (map[string]any, error) {
	params := make(map[string]any)
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, fmt.Errorf("invalid --params JSON: %w", err)
		}
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		var decoded any
		if types[key] == "str" {
			params[key] = value
		} else if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			params[key] = decoded
		} else {
			params[key] = value
		}
	}
	return params, nil
}

// printResult writes an execution result and returns an error on failure so
// the process exits non-zero.
func printResult(w io.Writer, result toolexecutor.Result, asJSON bool) error {
	if asJSON {
		if err := writeJSON(w, result); err != nil {
			return err
		}
	} else if result.Success {
		suffix := ""
		if result.Cached {
			suffix = " (cached)"
		}
		fmt.Fprintf(w, "%s%s\n", formatOutput(result.Output), suffix)
	}

	if !result.Success {
		return fmt.Errorf("%s", result.Error)
	}
	return nil
}

// paramTypes maps parameter names of tool to their type tags
func paramTypes(tool *toolregistry.Tool) map[string]string {
	types := make(map[string]string, len(tool.Parameters))
	for _, param := range tool.Parameters {
		types[param.Name] = param.Type
	}
	return types
}

func formatOutput(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case nil:
		return "null"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
