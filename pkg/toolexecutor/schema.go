package toolexecutor

import (
	"fmt"
	"strings"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/xeipuuv/gojsonschema"
)

// jsonType maps a descriptive parameter type tag to a JSON Schema type.
// Unknown tags map to "" and are left unconstrained.
func jsonType(tag string) string {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "str", "string":
		return "string"
	case "int", "integer":
		return "integer"
	case "float", "number":
		return "number"
	case "bool", "boolean":
		return "boolean"
	case "dict", "object", "map":
		return "object"
	case "list", "array":
		return "array"
	default:
		return ""
	}
}

// generateSchema builds a JSON Schema from the declared parameters of a tool
func generateSchema(tool *toolregistry.Tool) (*gojsonschema.Schema, error) {
	properties := make(map[string]any)
	required := []string{}

	for _, param := range tool.Parameters {
		paramSchema := map[string]any{
			"description": param.Description,
		}
		if t := jsonType(param.Type); t != "" {
			paramSchema["type"] = t
		}
		properties[param.Name] = paramSchema

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schemaMap := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schemaMap["required"] = required
	}

	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(schemaMap))
}

// validateTypes checks params against the generated schema
func validateTypes(schema *gojsonschema.Schema, params map[string]any) error {
	if params == nil {
		params = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(params))
	if err != nil {
		return err
	}

	if !result.Valid() {
		messages := []string{}
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return fmt.Errorf("%s", strings.Join(messages, "; "))
	}

	return nil
}
