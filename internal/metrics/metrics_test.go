package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ toolexecutor.Recorder = (*Metrics)(nil)

// counterValue returns the value of the series of name whose labels include want
func counterValue(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	series:
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue series
				}
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestExecutionObserved(t *testing.T) {
	m := NewMetrics()

	m.ExecutionObserved("calculator", true, 20*time.Millisecond)
	m.ExecutionObserved("calculator", true, 30*time.Millisecond)
	m.ExecutionObserved("calculator", false, time.Millisecond)

	assert.Equal(t, 2.0, counterValue(t, m, "tool_executions_total", map[string]string{"tool": "calculator", "status": StatusSuccess}))
	assert.Equal(t, 1.0, counterValue(t, m, "tool_executions_total", map[string]string{"tool": "calculator", "status": StatusFailure}))
	assert.Equal(t, 3.0, counterValue(t, m, "tool_execution_duration_seconds", map[string]string{"tool": "calculator"}))
}

func TestExecutionError(t *testing.T) {
	m := NewMetrics()

	m.ExecutionError("file_hash", "missing_parameter")
	m.ExecutionError("file_hash", "missing_parameter")
	m.ExecutionError("file_hash", "exception")

	assert.Equal(t, 2.0, counterValue(t, m, "tool_execution_errors_total", map[string]string{"tool": "file_hash", "error_type": "missing_parameter"}))
	assert.Equal(t, 1.0, counterValue(t, m, "tool_execution_errors_total", map[string]string{"error_type": "exception"}))
}

func TestCacheLookup(t *testing.T) {
	m := NewMetrics()

	m.CacheLookup("json_query", true)
	m.CacheLookup("json_query", false)
	m.CacheLookup("json_query", false)

	assert.Equal(t, 1.0, counterValue(t, m, "tool_cache_hits_total", map[string]string{"tool": "json_query"}))
	assert.Equal(t, 2.0, counterValue(t, m, "tool_cache_misses_total", map[string]string{"tool": "json_query"}))
}

func TestGauges(t *testing.T) {
	m := NewMetrics()

	m.SetToolsRegistered(4)
	m.ScheduledRun("nightly", true)

	assert.Equal(t, 4.0, counterValue(t, m, "tools_registered", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "scheduled_runs_total", map[string]string{"job": "nightly", "status": StatusSuccess}))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ExecutionObserved("text_processor", true, time.Millisecond)
	m.CacheLookup("text_processor", true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)

	for _, name := range []string{
		"tool_executions_total",
		"tool_execution_duration_seconds",
		"tool_cache_hits_total",
		"tools_registered",
	} {
		assert.Contains(t, string(body), name)
	}
}
