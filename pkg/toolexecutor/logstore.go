package toolexecutor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LogStore persists the retained window of execution records
type LogStore interface {
	// Load returns the stored records, oldest first.
	Load() ([]ExecutionRecord, error)
	// Persist stores records, the most recent window, oldest first.
	Persist(records []ExecutionRecord) error
	Close() error
}

// JSONLogStore keeps the execution log as a JSON array file
type JSONLogStore struct {
	path string
}

// NewJSONLogStore creates a store backed by path
func NewJSONLogStore(path string) *JSONLogStore {
	return &JSONLogStore{path: path}
}

// Path returns the backing file
func (s *JSONLogStore) Path() string {
	return s.path
}

// Load reads the log file. A missing file is an empty log.
func (s *JSONLogStore) Load() ([]ExecutionRecord, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []ExecutionRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read execution log: %w", err)
	}

	var records []ExecutionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse execution log: %w", err)
	}
	return records, nil
}

// Persist overwrites the log file through a temporary file and rename
func (s *JSONLogStore) Persist(records []ExecutionRecord) error {
	if records == nil {
		records = []ExecutionRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution log: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Close is a no-op for file stores
func (s *JSONLogStore) Close() error {
	return nil
}
