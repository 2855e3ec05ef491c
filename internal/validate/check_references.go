package validate

import (
	"context"
	"fmt"

	"sheetcurator/pkg/domain"
)

// referenceChecker verifies that every foreign-key value points at an
// existing identifier of the referenced entity type. When the referenced
// worksheet lacks its identifier column entirely, every non-missing
// foreign-key value is reported as unresolvable.
type referenceChecker struct {
	schema domain.SchemaProvider
}

func (c *referenceChecker) Name() string { return "references" }

func (c *referenceChecker) Check(ctx context.Context, view *View, entityType domain.EntityType) ([]domain.SheetError, error) {
	class, ok := view.Classes[entityType]
	if !ok {
		return nil, nil
	}
	keys, err := c.schema.ForeignKeys(class)
	if err != nil {
		return nil, err
	}
	pkField := identifierField(view, c.schema, entityType)
	var errs []domain.SheetError
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		targetEntity, err := c.schema.EntityFor(key.Class)
		if err != nil {
			return nil, err
		}
		// Keys pointing at entity types outside the view cannot be
		// resolved either way; skip them.
		if _, inView := view.Classes[targetEntity]; !inView {
			continue
		}
		known, hasColumn := c.referencedIDs(view, targetEntity, key.Class)
		for _, row := range view.Rows[entityType] {
			value, ok := row.Values[key.Field]
			if !ok || value.IsNull() {
				continue
			}
			rendered := value.Display()
			if hasColumn {
				if _, exists := known[rendered]; exists {
					continue
				}
			}
			errs = append(errs, enrich(domain.SheetError{
				Message: fmt.Sprintf("Referenced %s with ID %s doesn't exist", targetEntity, rendered),
				Column:  key.Field,
				Input:   value,
			}, view, entityType, row, pkField))
		}
	}
	return errs, nil
}

// referencedIDs collects the identifier values of the target entity type.
// The boolean reports whether the target rows carry the identifier column
// at all.
func (c *referenceChecker) referencedIDs(view *View, targetEntity domain.EntityType, targetClass domain.SchemaClassID) (map[string]struct{}, bool) {
	idField, err := c.schema.IdentifierField(targetClass)
	if err != nil {
		return nil, false
	}
	rows := view.Rows[targetEntity]
	hasColumn := false
	ids := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		value, ok := row.Values[idField]
		if !ok {
			continue
		}
		hasColumn = true
		if value.IsNull() {
			continue
		}
		ids[value.Display()] = struct{}{}
	}
	return ids, hasColumn
}
