// Package archive publishes final validation reports to durable storage.
package archive

import (
	"context"

	"sheetcurator/pkg/domain"
)

// Archiver stores one validation result under a key and returns the
// location it can be retrieved from.
type Archiver interface {
	Put(ctx context.Context, key string, result domain.ValidationResult) (string, error)
}
