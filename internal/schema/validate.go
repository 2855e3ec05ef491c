package schema

import (
	"fmt"

	"sheetcurator/pkg/domain"
)

// ValidateInstance checks one normalized row against a class. Findings are
// returned as violations; the error return is reserved for engine failures
// such as an unknown class.
func (p *Provider) ValidateInstance(class domain.SchemaClassID, row domain.NormalizedRow) ([]domain.Violation, error) {
	fields, err := p.InducedFields(class)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]domain.FieldDef, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	var violations []domain.Violation

	// Required fields must be present and non-null; a multivalued field
	// must carry at least one item.
	for _, f := range fields {
		if !f.Required {
			continue
		}
		value, ok := row.Values[f.Name]
		if !ok || value.IsNull() || (value.Kind == domain.KindList && len(value.Items) == 0) {
			violations = append(violations, domain.Violation{
				Field:   f.Name,
				Message: "Field required",
				Input:   value,
			})
		}
	}

	// Unknown columns are forbidden.
	for _, col := range row.Columns {
		if _, ok := byName[col]; !ok {
			violations = append(violations, domain.Violation{
				Field:   col,
				Message: "Extra inputs are not permitted",
				Input:   row.Values[col],
			})
		}
	}

	// Type and enum checks on present, non-null values.
	for _, col := range row.Columns {
		f, ok := byName[col]
		if !ok {
			continue
		}
		value := row.Values[col]
		if value.IsNull() {
			continue
		}
		if f.Multivalued {
			for _, item := range value.Items {
				violations = append(violations, checkScalar(f, item)...)
			}
			continue
		}
		violations = append(violations, checkScalar(f, value)...)
	}

	return violations, nil
}

func checkScalar(f domain.FieldDef, value domain.Value) []domain.Violation {
	if value.IsNull() {
		return nil
	}
	switch f.Range {
	case domain.RangeInteger:
		if value.Kind != domain.KindInt {
			return []domain.Violation{{
				Field:   f.Name,
				Message: "Input should be a valid integer",
				Input:   value,
			}}
		}
	case domain.RangeDecimal:
		// Accepts both integer and string-rendered decimal inputs.
	default:
		if value.Kind == domain.KindInt && len(f.Permissible) == 0 {
			return []domain.Violation{{
				Field:   f.Name,
				Message: "Input should be a valid string",
				Input:   value,
			}}
		}
	}
	if len(f.Permissible) > 0 {
		rendered := value.Display()
		for _, allowed := range f.Permissible {
			if rendered == allowed {
				return nil
			}
		}
		return []domain.Violation{{
			Field:   f.Name,
			Message: fmt.Sprintf("Input should be one of the permissible values, got %q", rendered),
			Input:   value,
		}}
	}
	return nil
}
