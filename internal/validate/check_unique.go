package validate

import (
	"context"
	"fmt"

	"sheetcurator/pkg/domain"
)

// uniqueChecker reports identifier values occurring more than once within
// an entity type's worksheet. Every occurrence of a duplicated value is
// reported, not just the repeats. Missing identifiers are the schema
// checker's concern and are skipped here.
type uniqueChecker struct {
	schema domain.SchemaProvider
}

func (c *uniqueChecker) Name() string { return "unique" }

func (c *uniqueChecker) Check(ctx context.Context, view *View, entityType domain.EntityType) ([]domain.SheetError, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pkField := identifierField(view, c.schema, entityType)
	if pkField == "" {
		return nil, nil
	}
	rows := view.Rows[entityType]
	occurrences := make(map[string]int, len(rows))
	for _, row := range rows {
		value, ok := row.Values[pkField]
		if !ok || value.IsNull() {
			continue
		}
		occurrences[value.Display()]++
	}
	var errs []domain.SheetError
	for _, row := range rows {
		value, ok := row.Values[pkField]
		if !ok || value.IsNull() {
			continue
		}
		if occurrences[value.Display()] < 2 {
			continue
		}
		errs = append(errs, enrich(domain.SheetError{
			Message: fmt.Sprintf("Duplicate identifier %s", value.Display()),
			Column:  pkField,
			Input:   value,
		}, view, entityType, row, pkField))
	}
	return errs, nil
}
