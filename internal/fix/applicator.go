package fix

import (
	"context"
	"fmt"

	"sheetcurator/pkg/domain"
)

// Apply writes all annotated fixes back to their worksheets, one batch per
// worksheet. Duplicate targets are collapsed on (entity type, cell), keeping
// the first fix seen. Reports whether any write was committed.
func Apply(ctx context.Context, errs []domain.SheetError, writers map[domain.EntityType]domain.SheetWriter) (bool, error) {
	type target struct {
		entity domain.EntityType
		cell   string
	}
	seen := map[target]struct{}{}
	batches := map[domain.EntityType][]domain.CellWrite{}
	for _, e := range errs {
		if e.InputFix == "" || e.Cell == "" || e.EntityType == "" {
			continue
		}
		key := target{entity: e.EntityType, cell: e.Cell}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		batches[e.EntityType] = append(batches[e.EntityType], domain.CellWrite{
			Cell:  e.Cell,
			Value: e.InputFix,
		})
	}
	wrote := false
	for entityType, writes := range batches {
		writer := writers[entityType]
		if writer == nil {
			continue
		}
		if err := writer.BatchWrite(ctx, writes); err != nil {
			return wrote, fmt.Errorf("apply fixes to %s worksheet: %w", entityType, err)
		}
		wrote = true
	}
	return wrote, nil
}
