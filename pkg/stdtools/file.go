package stdtools

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/harun/barrot/pkg/toolregistry"
)

const defaultMaxBytes = 200000

// FileRead returns the text content of a file, capped at max_bytes
func FileRead() Definition {
	return Definition{
		Name:        "file_read",
		Description: "Read the content of a text file",
		Category:    toolregistry.CategoryFileOperation,
		Parameters: []toolregistry.ToolParameter{
			{Name: "path", Type: "str", Description: "File to read", Required: true},
			{Name: "max_bytes", Type: "int", Description: "Maximum bytes to read", Required: false, Default: defaultMaxBytes},
		},
		Returns:     "str",
		SafetyLevel: toolregistry.SafetyRequiresReview,
		Executable:  toolregistry.ExecutableFunc(readFile),
	}
}

func readFile(ctx context.Context, params map[string]any) (any, error) {
	path, ok := stringParam(params, "path")
	if !ok || path == "" {
		return nil, fmt.Errorf("path must be a non-empty string")
	}
	maxBytes, err := intParam(params, "max_bytes", defaultMaxBytes)
	if err != nil {
		return nil, err
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max_bytes must be positive")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// intParam accepts Go ints and the float64 values JSON decoding produces
func intParam(params map[string]any, name string, fallback int) (int, error) {
	v, ok := params[name]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}
