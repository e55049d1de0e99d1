// Package stdtools provides the built-in tools every barrot process registers.
package stdtools

import (
	"github.com/harun/barrot/pkg/toolregistry"
)

// Definition is a tool ready to be registered
type Definition struct {
	Name        string
	Description string
	Category    toolregistry.Category
	Parameters  []toolregistry.ToolParameter
	Returns     string
	SafetyLevel int
	Executable  toolregistry.Executable
}

// All returns the standard tool set
func All() []Definition {
	return []Definition{
		TextProcessor(),
		Calculator(),
		JSONQuery(),
		FileHash(),
		FileRead(),
	}
}

func stringParam(params map[string]any, name string) (string, bool) {
	v, ok := params[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
