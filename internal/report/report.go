// Package report defines the run-history contract: every validation pass
// can be persisted as a record for later inspection.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sheetcurator/pkg/domain"
)

// Record is one persisted validation run.
type Record struct {
	ID         string                  `json:"id"`
	SheetID    string                  `json:"sheet_id"`
	Bionetwork string                  `json:"bionetwork,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
	Result     domain.ValidationResult `json:"result"`
}

// Store persists validation run records.
type Store interface {
	Save(ctx context.Context, record Record) error
	List(ctx context.Context, sheetID string) ([]Record, error)
}

// Prepare fills in the record's identity: a fresh UUID when the ID is empty
// and the current time when CreatedAt is zero.
func Prepare(record Record) Record {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return record
}
