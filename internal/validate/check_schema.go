package validate

import (
	"context"

	"sheetcurator/pkg/domain"
)

// schemaChecker validates every row against its entity type's schema class.
type schemaChecker struct {
	schema domain.SchemaProvider
}

func (c *schemaChecker) Name() string { return "schema" }

func (c *schemaChecker) Check(ctx context.Context, view *View, entityType domain.EntityType) ([]domain.SheetError, error) {
	class, ok := view.Classes[entityType]
	if !ok {
		return nil, nil
	}
	pkField := identifierField(view, c.schema, entityType)
	var errs []domain.SheetError
	for _, row := range view.Rows[entityType] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		violations, err := c.schema.ValidateInstance(class, row)
		if err != nil {
			// Engine-level failure: report once per row without column
			// attribution rather than aborting the whole pass.
			errs = append(errs, enrich(domain.SheetError{
				Message: err.Error(),
			}, view, entityType, row, pkField))
			continue
		}
		for _, v := range violations {
			errs = append(errs, enrich(domain.SheetError{
				Message: v.Message,
				Column:  v.Field,
				Input:   v.Input,
			}, view, entityType, row, pkField))
		}
	}
	return errs, nil
}
