package toolregistry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"
)

// ErrToolNotFound is returned when a tool id is not registered
var ErrToolNotFound = errors.New("tool not found")

const idSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Options configures a Registry
type Options struct {
	// Path of the metadata file. Empty disables persistence.
	Path string
	// Now overrides the clock used for tool ids.
	Now func() time.Time
}

// Registry manages tool definitions, statistics and executables
type Registry struct {
	tools         map[string]*Tool
	order         []string
	categoryIndex map[Category][]string
	executables   map[string]Executable
	path          string
	now           func() time.Time
	mu            sync.RWMutex
}

// New creates an empty registry
func New(opts Options) *Registry {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Registry{
		tools:         make(map[string]*Tool),
		categoryIndex: make(map[Category][]string),
		executables:   make(map[string]Executable),
		path:          opts.Path,
		now:           now,
	}
}

// Register adds a tool and persists the registry metadata. A nil executable
// is accepted; executing such a tool fails until Bind is called.
func (r *Registry) Register(
	name string,
	description string,
	category Category,
	parameters []ToolParameter,
	returns string,
	executable Executable,
	safetyLevel int,
) (*Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name cannot be empty")
	}
	if !category.Valid() {
		return nil, fmt.Errorf("invalid category: %s", category)
	}
	if safetyLevel < SafetySafe || safetyLevel > SafetyDangerous {
		return nil, fmt.Errorf("safety level must be between %d and %d, got %d", SafetySafe, SafetyDangerous, safetyLevel)
	}
	for _, p := range parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("parameter name cannot be empty for tool %s", name)
		}
	}

	createdAt := r.now()
	id := fmt.Sprintf("%s_%s_%d", category, name, createdAt.Unix())

	r.mu.Lock()
	if _, exists := r.tools[id]; exists {
		suffix, err := gonanoid.Generate(idSuffixAlphabet, 6)
		if err != nil {
			r.mu.Unlock()
			return nil, fmt.Errorf("failed to generate tool id suffix: %w", err)
		}
		id = id + "_" + suffix
	}

	tool := &Tool{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    category,
		Parameters:  append([]ToolParameter(nil), parameters...),
		Returns:     returns,
		SafetyLevel: safetyLevel,
		SuccessRate: 1.0,
		CreatedAt:   createdAt,
	}

	r.tools[id] = tool
	r.order = append(r.order, id)
	r.categoryIndex[category] = append(r.categoryIndex[category], id)
	if executable != nil {
		r.executables[id] = executable
	}
	snapshot := tool.clone()
	r.mu.Unlock()

	log.Info().
		Str("tool_id", id).
		Str("category", string(category)).
		Int("safety_level", safetyLevel).
		Msg("Tool registered")

	r.persist()

	return snapshot, nil
}

// Get returns a snapshot of the tool with the given id
func (r *Registry) Get(id string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	return tool.clone(), nil
}

// Executable returns the implementation bound to a tool
func (r *Registry) Executable(id string) (Executable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exec, ok := r.executables[id]
	return exec, ok
}

// Bind attaches an executable to an already registered tool
func (r *Registry) Bind(id string, executable Executable) error {
	if executable == nil {
		return fmt.Errorf("executable cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[id]; !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}
	r.executables[id] = executable

	log.Debug().Str("tool_id", id).Msg("Executable bound")
	return nil
}

// Restore binds executable to the first unbound tool with the given name and
// category, typically one loaded from disk. It reports false when none exists.
func (r *Registry) Restore(name string, category Category, executable Executable) (*Tool, bool) {
	if executable == nil {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		tool := r.tools[id]
		if tool.Name != name || tool.Category != category {
			continue
		}
		if _, bound := r.executables[id]; bound {
			continue
		}
		r.executables[id] = executable
		log.Debug().Str("tool_id", id).Msg("Executable restored for persisted tool")
		return tool.clone(), true
	}
	return nil, false
}

// List returns all tools in registration order
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]*Tool, 0, len(r.order))
	for _, id := range r.order {
		tools = append(tools, r.tools[id].clone())
	}
	return tools
}

// Count returns the number of registered tools
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tools)
}

// ByCategory returns the tools listed in the category index
func (r *Registry) ByCategory(category Category) []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.categoryIndex[category]
	tools := make([]*Tool, 0, len(ids))
	for _, id := range ids {
		if tool, ok := r.tools[id]; ok {
			tools = append(tools, tool.clone())
		}
	}
	return tools
}

// FindByName returns the first registered tool with exactly this name
func (r *Registry) FindByName(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if tool := r.tools[id]; tool.Name == name {
			return tool.clone(), true
		}
	}
	return nil, false
}

// Search returns tools whose name or description contains query, ordered by
// success rate then usage count, both descending. A nil category matches all.
func (r *Registry) Search(query string, category *Category, maxSafetyLevel int) []*Tool {
	q := strings.ToLower(query)

	r.mu.RLock()
	results := []*Tool{}
	for _, id := range r.order {
		tool := r.tools[id]
		if category != nil && tool.Category != *category {
			continue
		}
		if tool.SafetyLevel > maxSafetyLevel {
			continue
		}
		if strings.Contains(strings.ToLower(tool.Name), q) ||
			strings.Contains(strings.ToLower(tool.Description), q) {
			results = append(results, tool.clone())
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].SuccessRate != results[j].SuccessRate {
			return results[i].SuccessRate > results[j].SuccessRate
		}
		return results[i].UsageCount > results[j].UsageCount
	})

	return results
}

// RecordSuccess folds one successful execution into the running statistics
func (r *Registry) RecordSuccess(id string, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tool, ok := r.tools[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}

	tool.UsageCount++
	n := float64(tool.UsageCount)
	tool.SuccessRate = (tool.SuccessRate*(n-1) + 1.0) / n
	tool.AverageDuration = (tool.AverageDuration*(n-1) + duration.Seconds()) / n
	return nil
}

// RecordFailure folds one failed execution into the success rate. The
// average duration is left untouched.
func (r *Registry) RecordFailure(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tool, ok := r.tools[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrToolNotFound, id)
	}

	tool.UsageCount++
	n := float64(tool.UsageCount)
	tool.SuccessRate = (tool.SuccessRate * (n - 1)) / n
	return nil
}
