package toolexecutor

import "errors"

var (
	// ErrToolNotFound means the tool id is not registered
	ErrToolNotFound = errors.New("tool not found")
	// ErrNoExecutor means the tool is registered without an executable
	ErrNoExecutor = errors.New("tool has no executor")
	// ErrMissingParameter means a required parameter was not supplied
	ErrMissingParameter = errors.New("missing required parameter")
	// ErrInvalidParameters means strict type validation rejected the parameters
	ErrInvalidParameters = errors.New("invalid parameters")
	// ErrExecution wraps an error or panic raised by the tool itself
	ErrExecution = errors.New("tool execution failed")
)

// errorType maps an execution error to a short metrics label
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrToolNotFound):
		return "not_found"
	case errors.Is(err, ErrNoExecutor):
		return "no_executor"
	case errors.Is(err, ErrMissingParameter):
		return "missing_parameter"
	case errors.Is(err, ErrInvalidParameters):
		return "invalid_parameters"
	default:
		return "exception"
	}
}
