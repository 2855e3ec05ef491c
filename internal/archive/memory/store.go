// Package memory provides an in-memory archive for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sheetcurator/internal/archive"
	"sheetcurator/pkg/domain"
)

// Compile-time contract assertion.
var _ archive.Archiver = (*Store)(nil)

// Store keeps archived results in a map keyed by object key.
type Store struct {
	mu      sync.RWMutex
	objects map[string]domain.ValidationResult
}

// NewStore returns an empty in-memory archive.
func NewStore() *Store {
	return &Store{objects: map[string]domain.ValidationResult{}}
}

// Put stores the result under key.
func (s *Store) Put(_ context.Context, key string, result domain.ValidationResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = result
	return "mem://" + key, nil
}

// Get retrieves a stored result.
func (s *Store) Get(key string) (domain.ValidationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.objects[key]
	if !ok {
		return domain.ValidationResult{}, fmt.Errorf("no archived result under %q", key)
	}
	return result, nil
}

// Len reports the number of archived results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
