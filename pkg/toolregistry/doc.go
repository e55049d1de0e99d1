// Package toolregistry holds tool definitions, their running statistics, and
// the in-memory binding from tool id to executable implementation.
//
// Invariants:
// - Only metadata is persisted; executables must be bound again after a restart.
// - Statistics change only through RecordSuccess and RecordFailure.
// - Tools are never removed.
//
// Usage:
//
//	reg := toolregistry.New(toolregistry.Options{Path: "tool-registry.json"})
//	tool, _ := reg.Register("echo", "Echo input", toolregistry.CategorySystem,
//		[]toolregistry.ToolParameter{{Name: "text", Type: "str", Description: "text", Required: true}},
//		"str",
//		toolregistry.ExecutableFunc(func(ctx context.Context, params map[string]any) (any, error) {
//			return params["text"], nil
//		}), 1)
package toolregistry
