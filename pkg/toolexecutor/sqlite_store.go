package toolexecutor

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLogStore keeps the execution log in a SQLite table. Every Persist
// trims the table to the newest retention rows.
type SQLiteLogStore struct {
	db        *sql.DB
	path      string
	retention int
}

// NewSQLiteLogStore opens or creates the database at path. A retention of
// zero or less means DefaultRetention.
func NewSQLiteLogStore(path string, retention int) (*SQLiteLogStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteLogStore{db: db, path: path, retention: retention}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteLogStore) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS executions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL UNIQUE,
			tool_id TEXT NOT NULL,
			parameters TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			duration REAL NOT NULL,
			success INTEGER NOT NULL,
			result TEXT,
			error TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_executions_tool ON executions(tool_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file
func (s *SQLiteLogStore) Path() string {
	return s.path
}

// Load returns all stored records, oldest first
func (s *SQLiteLogStore) Load() ([]ExecutionRecord, error) {
	rows, err := s.db.Query(`
		SELECT execution_id, tool_id, parameters, timestamp, duration, success, result, error
		FROM executions ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer rows.Close()

	records := []ExecutionRecord{}
	for rows.Next() {
		var (
			rec        ExecutionRecord
			params     string
			success    int
			result     sql.NullString
			errMessage sql.NullString
		)
		if err := rows.Scan(&rec.ExecutionID, &rec.ToolID, &params, &rec.Timestamp, &rec.Duration, &success, &result, &errMessage); err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &rec.Parameters); err != nil {
			return nil, fmt.Errorf("failed to decode parameters of %s: %w", rec.ExecutionID, err)
		}
		rec.Success = success == 1
		if result.Valid {
			rec.Result = stringPtr(result.String)
		}
		if errMessage.Valid {
			rec.Error = stringPtr(errMessage.String)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Persist inserts records that are not stored yet and trims the table to
// the store's retention. Rows not in records are kept while they fit, so a
// window that failed to load does not wipe the table.
func (s *SQLiteLogStore) Persist(records []ExecutionRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO executions (execution_id, tool_id, parameters, timestamp, duration, success, result, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(execution_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		params, err := json.Marshal(rec.Parameters)
		if err != nil {
			return fmt.Errorf("failed to encode parameters of %s: %w", rec.ExecutionID, err)
		}

		success := 0
		if rec.Success {
			success = 1
		}

		if _, err := stmt.Exec(rec.ExecutionID, rec.ToolID, string(params), rec.Timestamp, rec.Duration, success, nullable(rec.Result), nullable(rec.Error)); err != nil {
			return fmt.Errorf("failed to insert execution %s: %w", rec.ExecutionID, err)
		}
	}

	if _, err := tx.Exec(`
		DELETE FROM executions
		WHERE seq NOT IN (SELECT seq FROM executions ORDER BY seq DESC LIMIT ?)`, s.retention); err != nil {
		return fmt.Errorf("failed to trim executions: %w", err)
	}

	return tx.Commit()
}

// Close closes the database
func (s *SQLiteLogStore) Close() error {
	return s.db.Close()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
