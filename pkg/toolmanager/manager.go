// Package toolmanager wires the registry, selector and executor into one
// facade used by the CLI and the scheduler.
package toolmanager

import (
	"context"
	"errors"
	"fmt"

	"github.com/harun/barrot/pkg/stdtools"
	"github.com/harun/barrot/pkg/toolexecutor"
	"github.com/harun/barrot/pkg/toolregistry"
	"github.com/harun/barrot/pkg/toolselector"
	"github.com/rs/zerolog/log"
)

// Options configures a Manager
type Options struct {
	// RegistryPath is the registry JSON file. Empty keeps the registry in memory.
	RegistryPath string
	Executor     toolexecutor.Options
}

// Manager owns one registry, selector and executor
type Manager struct {
	registry *toolregistry.Registry
	selector *toolselector.Selector
	executor *toolexecutor.Executor
}

// New builds a manager and loads any persisted registry
func New(opts Options) (*Manager, error) {
	registry := toolregistry.New(toolregistry.Options{
		Path: opts.RegistryPath,
		Now:  opts.Executor.Now,
	})
	if err := registry.Load(); err != nil {
		return nil, fmt.Errorf("failed to load tool registry: %w", err)
	}

	return &Manager{
		registry: registry,
		selector: toolselector.New(registry),
		executor: toolexecutor.New(registry, opts.Executor),
	}, nil
}

// Registry returns the underlying registry
func (m *Manager) Registry() *toolregistry.Registry { return m.registry }

// Selector returns the underlying selector
func (m *Manager) Selector() *toolselector.Selector { return m.selector }

// Executor returns the underlying executor
func (m *Manager) Executor() *toolexecutor.Executor { return m.executor }

// RegisterStandardTools binds the built-in tools, reusing persisted entries
// so their statistics survive restarts.
func (m *Manager) RegisterStandardTools() error {
	for _, def := range stdtools.All() {
		if tool, ok := m.registry.Restore(def.Name, def.Category, def.Executable); ok {
			log.Debug().Str("tool_id", tool.ID).Msg("Standard tool restored")
			continue
		}
		if _, err := m.registry.Register(
			def.Name,
			def.Description,
			def.Category,
			def.Parameters,
			def.Returns,
			def.Executable,
			def.SafetyLevel,
		); err != nil {
			return fmt.Errorf("failed to register %s: %w", def.Name, err)
		}
	}
	return nil
}

// AutoSelectAndExecute picks the best tool for task and runs it
func (m *Manager) AutoSelectAndExecute(ctx context.Context, task string, params map[string]any) toolexecutor.Result {
	tool, err := m.selector.SelectTool(task, nil, nil)
	if err != nil {
		log.Info().Str("task", task).Msg("No suitable tool found")
		return toolexecutor.Result{Success: false, Error: "No suitable tool found", Err: err}
	}

	log.Info().Str("task", task).Str("tool_id", tool.ID).Msg("Tool selected")
	return m.executor.Execute(ctx, tool.ID, params, true)
}

// ExecuteByName runs a tool addressed by id or by name. Ids win over names.
func (m *Manager) ExecuteByName(ctx context.Context, nameOrID string, params map[string]any, useCache bool) toolexecutor.Result {
	id, err := m.Resolve(nameOrID)
	if err != nil {
		return toolexecutor.Result{
			Success: false,
			Error:   fmt.Sprintf("Tool %s not found", nameOrID),
			Err:     fmt.Errorf("%w: %s", toolexecutor.ErrToolNotFound, nameOrID),
		}
	}
	return m.executor.Execute(ctx, id, params, useCache)
}

// Resolve maps a tool name or id to an id
func (m *Manager) Resolve(nameOrID string) (string, error) {
	if _, err := m.registry.Get(nameOrID); err == nil {
		return nameOrID, nil
	} else if !errors.Is(err, toolregistry.ErrToolNotFound) {
		return "", err
	}

	tool, ok := m.registry.FindByName(nameOrID)
	if !ok {
		return "", fmt.Errorf("%w: %s", toolregistry.ErrToolNotFound, nameOrID)
	}
	return tool.ID, nil
}

// Close saves registry statistics and releases the execution log store
func (m *Manager) Close() error {
	var errs []error
	if err := m.registry.Save(); err != nil {
		errs = append(errs, fmt.Errorf("failed to save tool registry: %w", err))
	}
	if err := m.executor.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close execution log: %w", err))
	}
	return errors.Join(errs...)
}
