package stdtools

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/harun/barrot/pkg/toolregistry"
)

// FileHash returns the hex digest of a file
func FileHash() Definition {
	return Definition{
		Name:        "file_hash",
		Description: "Compute the hash of a file",
		Category:    toolregistry.CategoryFileOperation,
		Parameters: []toolregistry.ToolParameter{
			{Name: "path", Type: "str", Description: "File to hash", Required: true},
			{Name: "algorithm", Type: "str", Description: "sha256 or md5", Required: false, Default: "sha256"},
		},
		Returns:     "str",
		SafetyLevel: toolregistry.SafetySafe,
		Executable:  toolregistry.ExecutableFunc(hashFile),
	}
}

func hashFile(ctx context.Context, params map[string]any) (any, error) {
	path, ok := stringParam(params, "path")
	if !ok || path == "" {
		return nil, fmt.Errorf("path must be a non-empty string")
	}
	algorithm, _ := stringParam(params, "algorithm")

	var h hash.Hash
	switch strings.ToLower(algorithm) {
	case "", "sha256":
		h = sha256.New()
	case "md5":
		h = md5.New()
	default:
		return nil, fmt.Errorf("unsupported algorithm: %s", algorithm)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
