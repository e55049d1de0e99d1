package stdtools

import (
	"context"
	"fmt"
	"strings"

	"github.com/harun/barrot/pkg/toolregistry"
)

// TextProcessor upper-cases, lower-cases or reverses text. Unknown operations
// return the text unchanged.
func TextProcessor() Definition {
	return Definition{
		Name:        "text_processor",
		Description: "Process text with various operations",
		Category:    toolregistry.CategoryDataProcessing,
		Parameters: []toolregistry.ToolParameter{
			{Name: "text", Type: "str", Description: "Input text", Required: true},
			{Name: "operation", Type: "str", Description: "Operation to perform: upper, lower or reverse", Required: true},
		},
		Returns:     "str",
		SafetyLevel: toolregistry.SafetySafe,
		Executable:  toolregistry.ExecutableFunc(processText),
	}
}

func processText(ctx context.Context, params map[string]any) (any, error) {
	text, ok := stringParam(params, "text")
	if !ok {
		return nil, fmt.Errorf("text must be a string")
	}
	operation, _ := stringParam(params, "operation")

	switch strings.ToLower(operation) {
	case "upper":
		return strings.ToUpper(text), nil
	case "lower":
		return strings.ToLower(text), nil
	case "reverse":
		runes := []rune(text)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	default:
		return text, nil
	}
}
