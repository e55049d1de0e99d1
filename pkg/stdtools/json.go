package stdtools

import (
	"context"
	"fmt"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/tidwall/gjson"
)

// JSONQuery extracts a value from a JSON document with a gjson path
func JSONQuery() Definition {
	return Definition{
		Name:        "json_query",
		Description: "Query a JSON document with a path expression",
		Category:    toolregistry.CategoryDataProcessing,
		Parameters: []toolregistry.ToolParameter{
			{Name: "json", Type: "str", Description: "JSON document", Required: true},
			{Name: "path", Type: "str", Description: "gjson path, e.g. items.#.name", Required: true},
		},
		Returns:     "any",
		SafetyLevel: toolregistry.SafetySafe,
		Executable:  toolregistry.ExecutableFunc(queryJSON),
	}
}

func queryJSON(ctx context.Context, params map[string]any) (any, error) {
	doc, ok := stringParam(params, "json")
	if !ok {
		return nil, fmt.Errorf("json must be a string")
	}
	path, ok := stringParam(params, "path")
	if !ok {
		return nil, fmt.Errorf("path must be a string")
	}

	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("invalid JSON document")
	}

	result := gjson.Get(doc, path)
	if !result.Exists() {
		return nil, fmt.Errorf("path %q not found", path)
	}
	return result.Value(), nil
}
