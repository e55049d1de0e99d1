package toolregistry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
)

// Save writes the metadata of every tool to the registry file. Executables
// are never written.
func (r *Registry) Save() error {
	if r.path == "" {
		return nil
	}

	r.mu.RLock()
	metadata := make(map[string]*Tool, len(r.tools))
	for id, tool := range r.tools {
		metadata[id] = tool
	}
	data, err := json.MarshalIndent(metadata, "", "  ")
	r.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal tool registry: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	tempPath := r.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, r.path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// persist saves the registry and only logs failures
func (r *Registry) persist() {
	if err := r.Save(); err != nil {
		log.Warn().Err(err).Str("path", r.path).Msg("Could not save tool registry")
	}
}

// Load restores tool metadata from the registry file. Loaded tools have no
// executable. Ids already present in memory are left alone.
func (r *Registry) Load() error {
	if r.path == "" {
		return nil
	}

	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", r.path).Msg("Tool registry file does not exist, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read tool registry: %w", err)
	}

	var metadata map[string]*Tool
	if err := json.Unmarshal(data, &metadata); err != nil {
		return fmt.Errorf("failed to parse tool registry: %w", err)
	}

	ids := make([]string, 0, len(metadata))
	for id := range metadata {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	r.mu.Lock()
	loaded := 0
	for _, id := range ids {
		tool := metadata[id]
		if tool == nil {
			continue
		}
		if _, exists := r.tools[id]; exists {
			continue
		}
		if !tool.Category.Valid() {
			log.Warn().Str("tool_id", id).Str("category", string(tool.Category)).Msg("Skipping persisted tool with unknown category")
			continue
		}
		tool.ID = id
		r.tools[id] = tool
		r.order = append(r.order, id)
		r.categoryIndex[tool.Category] = append(r.categoryIndex[tool.Category], id)
		loaded++
	}
	r.mu.Unlock()

	log.Info().Str("path", r.path).Int("tool_count", loaded).Msg("Tool registry loaded")
	return nil
}
