// Package validate runs row-level and cross-entity checks over normalized
// worksheet data and enriches findings with addressing metadata.
package validate

import (
	"context"
	"fmt"

	"sheetcurator/pkg/domain"
)

// View is the read-only snapshot a checker inspects: the extracted
// worksheets, their normalized rows, and the resolved schema class per
// entity type.
type View struct {
	EntityTypes []domain.EntityType
	Worksheets  map[domain.EntityType]*domain.WorksheetData
	Rows        map[domain.EntityType][]domain.NormalizedRow
	Classes     map[domain.EntityType]domain.SchemaClassID
}

// Checker evaluates one concern against a view and reports the errors it
// finds for one entity type. Checkers are independent: each returns its own
// list and the engine concatenates them.
type Checker interface {
	Name() string
	Check(ctx context.Context, view *View, entityType domain.EntityType) ([]domain.SheetError, error)
}

// Engine runs a fixed set of checkers over every entity type in a view.
type Engine struct {
	schema   domain.SchemaProvider
	checkers []Checker
}

// NewEngine builds the default engine: schema conformance, identifier
// uniqueness, and referential integrity.
func NewEngine(schema domain.SchemaProvider) *Engine {
	return &Engine{
		schema: schema,
		checkers: []Checker{
			&schemaChecker{schema: schema},
			&uniqueChecker{schema: schema},
			&referenceChecker{schema: schema},
		},
	}
}

// Run evaluates all checkers against the view. Checker findings accumulate;
// a checker error aborts the run.
func (e *Engine) Run(ctx context.Context, view *View) ([]domain.SheetError, error) {
	var errs []domain.SheetError
	for _, entityType := range view.EntityTypes {
		for _, c := range e.checkers {
			found, err := c.Check(ctx, view, entityType)
			if err != nil {
				return nil, fmt.Errorf("checker %s on %s: %w", c.Name(), entityType, err)
			}
			errs = append(errs, found...)
		}
	}
	return errs, nil
}
