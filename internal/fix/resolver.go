// Package fix resolves table-driven repairs for validation errors and
// applies them back to the source worksheets.
package fix

import (
	"strings"

	"sheetcurator/pkg/domain"
)

// Key identifies one fixable (entity type, field, offending value) triple.
type Key struct {
	Entity domain.EntityType
	Field  string
	Value  string
}

// Table maps fixable values to their replacements.
type Table map[Key]string

// DefaultTable returns the built-in repair table: underscore-separated enum
// spellings replaced by their space-separated canonical forms.
func DefaultTable() Table {
	t := Table{
		{domain.EntityDonor, "manner_of_death", "not_applicable"}: "not applicable",
	}
	for _, v := range []string{"surgical_donor", "postmortem_donor", "living_organ_donor"} {
		t[Key{domain.EntitySample, "sample_source", v}] = strings.ReplaceAll(v, "_", " ")
	}
	for _, v := range []string{"surgical_resection", "blood_draw", "body_fluid"} {
		t[Key{domain.EntitySample, "sample_collection_method", v}] = strings.ReplaceAll(v, "_", " ")
	}
	return t
}

// Resolver annotates validation errors with available fixes.
type Resolver struct {
	schema     domain.SchemaProvider
	table      Table
	bionetwork string
}

// NewResolver builds a resolver over the given fix table.
func NewResolver(schema domain.SchemaProvider, table Table, bionetwork string) *Resolver {
	return &Resolver{schema: schema, table: table, bionetwork: bionetwork}
}

// Resolve returns a copy of errs with InputFix populated on every error a
// fix exists for. An error is fixable only when it names an entity type and
// column, its input is a plain string, and the column is a genuine
// attribute of the entity type's schema class.
func (r *Resolver) Resolve(errs []domain.SheetError) []domain.SheetError {
	out := make([]domain.SheetError, len(errs))
	copy(out, errs)
	for i := range out {
		if fix, ok := r.fixFor(out[i]); ok {
			out[i].InputFix = fix
		}
	}
	return out
}

func (r *Resolver) fixFor(err domain.SheetError) (string, bool) {
	if err.EntityType == "" || err.Column == "" {
		return "", false
	}
	if err.Input.Kind != domain.KindString {
		return "", false
	}
	fix, ok := r.table[Key{Entity: err.EntityType, Field: err.Column, Value: err.Input.Str}]
	if !ok {
		return "", false
	}
	if !r.isAttribute(err.EntityType, err.Column) {
		return "", false
	}
	return fix, true
}

func (r *Resolver) isAttribute(entityType domain.EntityType, field string) bool {
	class, err := r.schema.ClassFor(entityType, r.bionetwork)
	if err != nil {
		return false
	}
	fields, err := r.schema.InducedFields(class)
	if err != nil {
		return false
	}
	for _, f := range fields {
		if f.Name == field {
			return f.Attribute
		}
	}
	return false
}
