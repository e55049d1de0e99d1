package toolexecutor

import (
	"encoding/json"
	"fmt"
	"reflect"
)

const (
	// DefaultRetention is how many execution records are kept
	DefaultRetention = 1000
	maxResultChars   = 200
)

// ExecutionRecord is one entry of the execution log
type ExecutionRecord struct {
	ExecutionID string         `json:"execution_id"`
	ToolID      string         `json:"tool_id"`
	Parameters  map[string]any `json:"parameters"`
	Timestamp   string         `json:"timestamp"`
	Duration    float64        `json:"duration"`
	Success     bool           `json:"success"`
	Result      *string        `json:"result"`
	Error       *string        `json:"error"`
}

// summarizeResult renders the first characters of a result, or nil when the
// result is empty.
func summarizeResult(result any) *string {
	if isEmpty(result) {
		return nil
	}

	s := fmt.Sprintf("%v", result)
	if runes := []rune(s); len(runes) > maxResultChars {
		s = string(runes[:maxResultChars])
	}
	return &s
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array, reflect.Chan:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	default:
		return rv.IsZero()
	}
}

func stringPtr(s string) *string {
	return &s
}

// snapshotParams copies params for the log. Values JSON cannot encode (NaN,
// channels, funcs) are stored in their %v form so the log stays writable.
func snapshotParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if _, err := json.Marshal(v); err != nil {
			out[k] = fmt.Sprintf("%v", v)
			continue
		}
		out[k] = v
	}
	return out
}

func copyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
