package toolexecutor

import "time"

// Recorder receives execution telemetry. internal/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ExecutionObserved(toolName string, success bool, duration time.Duration)
	ExecutionError(toolName string, errorType string)
	CacheLookup(toolName string, hit bool)
}

type nopRecorder struct{}

func (nopRecorder) ExecutionObserved(string, bool, time.Duration) {}
func (nopRecorder) ExecutionError(string, string)                 {}
func (nopRecorder) CacheLookup(string, bool)                      {}
