// Package metrics exposes tool execution telemetry to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Execution status label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	registry *prometheus.Registry

	// Tool metrics
	ToolExecutionsTotal      *prometheus.CounterVec
	ToolExecutionDuration    *prometheus.HistogramVec
	ToolExecutionErrorsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Registry metrics
	ToolsRegistered prometheus.Gauge

	// Scheduler metrics
	ScheduledRunsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		ToolExecutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_executions_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool", "status"},
		),
		ToolExecutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		ToolExecutionErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_execution_errors_total",
				Help: "Total number of rejected or failed tool executions",
			},
			[]string{"tool", "error_type"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_cache_hits_total",
				Help: "Total number of executions served from the result cache",
			},
			[]string{"tool"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tool_cache_misses_total",
				Help: "Total number of result cache lookups that missed",
			},
			[]string{"tool"},
		),

		ToolsRegistered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tools_registered",
				Help: "Number of tools in the registry",
			},
		),

		ScheduledRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scheduled_runs_total",
				Help: "Total number of scheduled tool runs",
			},
			[]string{"job", "status"},
		),
	}

	m.registry.MustRegister(
		m.ToolExecutionsTotal,
		m.ToolExecutionDuration,
		m.ToolExecutionErrorsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ToolsRegistered,
		m.ScheduledRunsTotal,
	)

	return m
}

// ExecutionObserved records one completed invocation
func (m *Metrics) ExecutionObserved(toolName string, success bool, duration time.Duration) {
	m.ToolExecutionsTotal.WithLabelValues(toolName, status(success)).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(duration.Seconds())
}

// ExecutionError records a rejection or failure by error type
func (m *Metrics) ExecutionError(toolName string, errorType string) {
	m.ToolExecutionErrorsTotal.WithLabelValues(toolName, errorType).Inc()
}

// CacheLookup records a result cache hit or miss
func (m *Metrics) CacheLookup(toolName string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(toolName).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(toolName).Inc()
}

// SetToolsRegistered updates the registry size gauge
func (m *Metrics) SetToolsRegistered(n int) {
	m.ToolsRegistered.Set(float64(n))
}

// ScheduledRun records the outcome of a scheduled job
func (m *Metrics) ScheduledRun(job string, success bool) {
	m.ScheduledRunsTotal.WithLabelValues(job, status(success)).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(success bool) string {
	if success {
		return StatusSuccess
	}
	return StatusFailure
}
