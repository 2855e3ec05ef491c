// Package postgres provides a Postgres-backed report store with the same
// contract as the SQLite store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"sheetcurator/internal/report"
)

// Compile-time contract assertion.
var _ report.Store = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/sheetcurator?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store is a Postgres-backed report store.
type Store struct {
	db *sql.DB
}

// NewStore opens the run-history store using the provided DSN (falls back
// to defaultDSN) and ensures the runs table exists.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		sheet_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("ensure runs table: %w", err)
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Save inserts one run record.
func (s *Store) Save(ctx context.Context, record report.Record) error {
	record = report.Prepare(record)
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, sheet_id, created_at, payload) VALUES ($1, $2, $3, $4)`,
		record.ID, record.SheetID, record.CreatedAt, payload,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the sheet's records ordered by creation time.
func (s *Store) List(ctx context.Context, sheetID string) ([]report.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM runs WHERE sheet_id = $1 ORDER BY created_at`, sheetID)
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
