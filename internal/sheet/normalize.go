package sheet

import (
	"regexp"
	"strconv"
	"strings"

	"sheetcurator/pkg/domain"
)

// groupedIntPattern accepts plain and comma-grouped integers, with an
// optional leading minus. Malformed groupings such as "56,78" do not match
// and stay strings.
var groupedIntPattern = regexp.MustCompile(`^-?(?:\d+|\d{1,3}(?:,\d{3})+)$`)

// multivaluedSeparator splits multivalued cells.
const multivaluedSeparator = ";"

// Normalize converts raw rows into typed rows using the class's field
// definitions. Columns with blank headers are dropped; the remaining columns
// keep their source order. Normalization is idempotent over display
// renderings: re-normalizing a normalized value yields the same value.
func Normalize(rows []domain.RawRow, sourceColumns []string, fields []domain.FieldDef) []domain.NormalizedRow {
	byName := make(map[string]domain.FieldDef, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}
	columns := make([]string, 0, len(sourceColumns))
	for _, name := range sourceColumns {
		if strings.TrimSpace(name) != "" {
			columns = append(columns, name)
		}
	}
	out := make([]domain.NormalizedRow, 0, len(rows))
	for _, raw := range rows {
		values := make(map[string]domain.Value, len(columns))
		for _, col := range columns {
			values[col] = normalizeCell(raw.Cells[col], byName[col])
		}
		out = append(out, domain.NormalizedRow{Index: raw.Index, Columns: columns, Values: values})
	}
	return out
}

func normalizeCell(raw string, field domain.FieldDef) domain.Value {
	trimmed := strings.TrimSpace(raw)
	if field.Multivalued {
		if trimmed == "" {
			return domain.ListValue()
		}
		parts := strings.Split(trimmed, multivaluedSeparator)
		items := make([]domain.Value, 0, len(parts))
		for _, part := range parts {
			items = append(items, normalizeScalar(strings.TrimSpace(part), field))
		}
		return domain.ListValue(items...)
	}
	if trimmed == "" {
		return domain.NullValue()
	}
	return normalizeScalar(trimmed, field)
}

func normalizeScalar(trimmed string, field domain.FieldDef) domain.Value {
	if trimmed == "" {
		return domain.NullValue()
	}
	if field.Range == domain.RangeInteger && groupedIntPattern.MatchString(trimmed) {
		digits := strings.ReplaceAll(trimmed, ",", "")
		if i, err := strconv.ParseInt(digits, 10, 64); err == nil {
			return domain.IntValue(i)
		}
	}
	return domain.StringValue(trimmed)
}
