// Package sqlite persists validation run records to a single SQLite table
// as JSON payloads.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"sheetcurator/internal/report"
)

// Compile-time contract assertion.
var _ report.Store = (*Store)(nil)

// Store is a SQLite-backed report store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the run-history database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "sheetcurator.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		sheet_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create runs table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Save inserts one run record.
func (s *Store) Save(ctx context.Context, record report.Record) error {
	record = report.Prepare(record)
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, sheet_id, created_at, payload) VALUES (?, ?, ?, ?)`,
		record.ID, record.SheetID, record.CreatedAt.Format(time.RFC3339Nano), payload,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the sheet's records ordered by creation time.
func (s *Store) List(ctx context.Context, sheetID string) ([]report.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM runs WHERE sheet_id = ? ORDER BY created_at`, sheetID)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []report.Record
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var record report.Record
		if err := json.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
