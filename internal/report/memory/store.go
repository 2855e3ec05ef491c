// Package memory provides an in-memory report.Store used as a test double
// for code that persists run records.
package memory

import (
	"context"
	"sort"
	"sync"

	"sheetcurator/internal/report"
)

// Compile-time contract assertion.
var _ report.Store = (*Store)(nil)

// Store keeps run records in memory.
type Store struct {
	mu      sync.RWMutex
	records []report.Record
}

// NewStore returns an empty in-memory store.
func NewStore() *Store { return &Store{} }

// Save appends the record, assigning identity when missing.
func (s *Store) Save(_ context.Context, record report.Record) error {
	record = report.Prepare(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// List returns the sheet's records ordered by creation time.
func (s *Store) List(_ context.Context, sheetID string) ([]report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []report.Record
	for _, r := range s.records {
		if r.SheetID == sheetID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
