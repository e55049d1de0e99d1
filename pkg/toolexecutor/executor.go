package toolexecutor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// ToolSource is the registry surface the executor depends on
type ToolSource interface {
	Get(id string) (*toolregistry.Tool, error)
	Executable(id string) (toolregistry.Executable, bool)
	RecordSuccess(id string, duration time.Duration) error
	RecordFailure(id string) error
}

// Options configures an Executor
type Options struct {
	CacheEnabled bool
	// CacheTTL defaults to DefaultCacheTTL.
	CacheTTL time.Duration
	// Store persists the execution log. Nil keeps the log in memory only.
	Store LogStore
	// Retention defaults to DefaultRetention.
	Retention int
	// StrictTypes validates parameter values against their declared type tags.
	StrictTypes bool
	Recorder    Recorder
	// Now overrides the clock used for cache expiry and record timestamps.
	Now func() time.Time
}

// Result is the outcome of one Execute call
type Result struct {
	Success bool   `json:"success"`
	Output  any    `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	Cached  bool   `json:"cached,omitempty"`
	Err     error  `json:"-"`
}

// Executor validates, runs, caches and logs tool executions
type Executor struct {
	tools     ToolSource
	cache     *ResultCache
	store     LogStore
	retention int
	strict    bool
	recorder  Recorder
	now       func() time.Time

	schemas   map[string]*gojsonschema.Schema
	schemasMu sync.Mutex

	records []ExecutionRecord
	counter int
	logMu   sync.Mutex
}

// New creates an executor and loads previously persisted records
func New(tools ToolSource, opts Options) *Executor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultRetention
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}

	e := &Executor{
		tools:     tools,
		store:     opts.Store,
		retention: retention,
		strict:    opts.StrictTypes,
		recorder:  recorder,
		now:       now,
		schemas:   make(map[string]*gojsonschema.Schema),
		records:   []ExecutionRecord{},
	}
	if opts.CacheEnabled {
		e.cache = NewResultCache(opts.CacheTTL, now)
	}

	if e.store != nil {
		records, err := e.store.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Could not load execution log, starting empty")
		} else {
			e.records = trimRecords(records, retention)
			e.counter = lastSequence(e.records)
		}
	}

	log.Info().
		Bool("cache_enabled", opts.CacheEnabled).
		Bool("strict_types", opts.StrictTypes).
		Int("records", len(e.records)).
		Msg("Tool executor initialized")

	return e
}

// Execute runs a tool. Every failure is reported through the Result.
func (e *Executor) Execute(ctx context.Context, toolID string, params map[string]any, useCache bool) Result {
	tool, err := e.tools.Get(toolID)
	if err != nil {
		log.Error().Str("tool_id", toolID).Msg("Tool not found")
		return e.reject(toolID, fmt.Sprintf("Tool %s not found", toolID), fmt.Errorf("%w: %s", ErrToolNotFound, toolID))
	}

	executable, ok := e.tools.Executable(toolID)
	if !ok {
		log.Error().Str("tool_id", toolID).Msg("Tool has no executor")
		return e.reject(tool.Name, "Tool has no executor function", fmt.Errorf("%w: %s", ErrNoExecutor, toolID))
	}

	if useCache && e.cache != nil {
		if cached, hit := e.cache.Get(toolID, params); hit {
			e.recorder.CacheLookup(tool.Name, true)
			log.Debug().Str("tool_id", toolID).Msg("Serving cached result")
			return Result{Success: true, Output: cached, Cached: true}
		}
		e.recorder.CacheLookup(tool.Name, false)
	}

	for _, param := range tool.Parameters {
		if _, present := params[param.Name]; param.Required && !present {
			log.Warn().Str("tool_id", toolID).Str("parameter", param.Name).Msg("Missing required parameter")
			return e.reject(tool.Name,
				fmt.Sprintf("Missing required parameter: %s", param.Name),
				fmt.Errorf("%w: %s", ErrMissingParameter, param.Name))
		}
	}

	if e.strict {
		if err := e.checkTypes(tool, params); err != nil {
			log.Warn().Str("tool_id", toolID).Err(err).Msg("Parameter validation failed")
			return e.reject(tool.Name,
				fmt.Sprintf("parameter validation failed: %v", err),
				fmt.Errorf("%w: %w", ErrInvalidParameters, err))
		}
	}

	log.Debug().Str("tool_id", toolID).Msg("Executing tool")

	start := time.Now()
	output, err := invoke(ctx, executable, withDefaults(tool, params))
	duration := time.Since(start)

	if err != nil {
		if statErr := e.tools.RecordFailure(toolID); statErr != nil {
			log.Warn().Err(statErr).Str("tool_id", toolID).Msg("Could not update tool statistics")
		}
		e.recorder.ExecutionObserved(tool.Name, false, duration)
		e.recorder.ExecutionError(tool.Name, errorType(err))
		e.logExecution(toolID, params, duration, false, nil, stringPtr(err.Error()))

		log.Error().
			Str("tool_id", toolID).
			Dur("duration", duration).
			Err(err).
			Msg("Tool execution failed")

		return Result{
			Success: false,
			Error:   err.Error(),
			Err:     fmt.Errorf("%w: %w", ErrExecution, err),
		}
	}

	if statErr := e.tools.RecordSuccess(toolID, duration); statErr != nil {
		log.Warn().Err(statErr).Str("tool_id", toolID).Msg("Could not update tool statistics")
	}
	if e.cache != nil {
		e.cache.Put(toolID, params, output)
	}
	e.recorder.ExecutionObserved(tool.Name, true, duration)
	e.logExecution(toolID, params, duration, true, summarizeResult(output), nil)

	log.Debug().
		Str("tool_id", toolID).
		Dur("duration", duration).
		Msg("Tool execution completed")

	return Result{Success: true, Output: output}
}

// Records returns a copy of the retained execution log, oldest first
func (e *Executor) Records() []ExecutionRecord {
	e.logMu.Lock()
	defer e.logMu.Unlock()

	return append([]ExecutionRecord(nil), e.records...)
}

// ClearCache drops every cached result
func (e *Executor) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Close releases the log store
func (e *Executor) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

func (e *Executor) reject(toolName, message string, err error) Result {
	e.recorder.ExecutionError(toolName, errorType(err))
	return Result{Success: false, Error: message, Err: err}
}

func (e *Executor) checkTypes(tool *toolregistry.Tool, params map[string]any) error {
	e.schemasMu.Lock()
	schema, ok := e.schemas[tool.ID]
	if !ok {
		var err error
		schema, err = generateSchema(tool)
		if err != nil {
			e.schemasMu.Unlock()
			return fmt.Errorf("failed to generate schema: %w", err)
		}
		e.schemas[tool.ID] = schema
	}
	e.schemasMu.Unlock()

	return validateTypes(schema, params)
}

// logExecution appends a record and persists the retained window. The lock
// is held across Persist so snapshots reach the store in order.
func (e *Executor) logExecution(toolID string, params map[string]any, duration time.Duration, success bool, result, errMessage *string) {
	e.logMu.Lock()
	defer e.logMu.Unlock()

	e.counter++
	now := e.now()
	e.records = append(e.records, ExecutionRecord{
		ExecutionID: fmt.Sprintf("exec_%d_%d", e.counter, now.Unix()),
		ToolID:      toolID,
		Parameters:  snapshotParams(params),
		Timestamp:   now.UTC().Format(time.RFC3339Nano),
		Duration:    duration.Seconds(),
		Success:     success,
		Result:      result,
		Error:       errMessage,
	})
	e.records = trimRecords(e.records, e.retention)

	if e.store == nil {
		return
	}
	if err := e.store.Persist(e.records); err != nil {
		log.Warn().Err(err).Msg("Could not save execution log")
	}
}

// invoke calls the executable and converts a panic into an error
func invoke(ctx context.Context, executable toolregistry.Executable, params map[string]any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()

	return executable.Invoke(ctx, params)
}

// withDefaults fills optional parameters that have a default and were not supplied
func withDefaults(tool *toolregistry.Tool, params map[string]any) map[string]any {
	args := copyParams(params)
	for _, param := range tool.Parameters {
		if _, present := args[param.Name]; !present && param.Default != nil {
			args[param.Name] = param.Default
		}
	}
	return args
}

// lastSequence recovers the execution counter from persisted ids
func lastSequence(records []ExecutionRecord) int {
	last := 0
	for _, rec := range records {
		var seq, ts int64
		if _, err := fmt.Sscanf(rec.ExecutionID, "exec_%d_%d", &seq, &ts); err == nil && int(seq) > last {
			last = int(seq)
		}
	}
	return last
}

func trimRecords(records []ExecutionRecord, retention int) []ExecutionRecord {
	if len(records) <= retention {
		return records
	}
	return append([]ExecutionRecord(nil), records[len(records)-retention:]...)
}
