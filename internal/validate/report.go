package validate

import (
	"fmt"

	"sheetcurator/pkg/domain"
)

// enrich fills in the addressing metadata of a finding: worksheet ID, A1
// cell address, and the row's primary key when available.
func enrich(err domain.SheetError, view *View, entityType domain.EntityType, row domain.NormalizedRow, pkField string) domain.SheetError {
	err.EntityType = entityType
	err.Row = row.Index
	ws := view.Worksheets[entityType]
	if ws != nil {
		id := ws.WorksheetID
		err.WorksheetID = &id
		if err.Column != "" {
			if cell, ok := ws.CellAddress(row.Index, err.Column); ok {
				err.Cell = cell
			}
		}
	}
	if pkField != "" {
		if pk, ok := row.Values[pkField]; ok && !pk.IsNull() {
			err.PrimaryKey = fmt.Sprintf("%s:%s", pkField, pk.Display())
		}
	}
	return err
}

// identifierField resolves the identifier of the entity type's class,
// returning the empty string when the class has none.
func identifierField(view *View, schema domain.SchemaProvider, entityType domain.EntityType) string {
	class, ok := view.Classes[entityType]
	if !ok {
		return ""
	}
	field, err := schema.IdentifierField(class)
	if err != nil {
		return ""
	}
	return field
}

// BuildSummary counts rows per entity type and totals the error count.
func BuildSummary(view *View, errs []domain.SheetError) domain.Summary {
	counts := make(map[domain.EntityType]*int, len(view.EntityTypes))
	for _, entityType := range view.EntityTypes {
		n := len(view.Rows[entityType])
		counts[entityType] = &n
	}
	return domain.Summary{Counts: counts, ErrorCount: len(errs)}
}
