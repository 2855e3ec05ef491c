package domain

import "context"

// SchemaClassID names a schema class, e.g. "Dataset" or "GutSample".
type SchemaClassID string

// RangeKind is the value range of a schema field.
type RangeKind int

// Field value ranges.
const (
	// RangeString accepts string values, including enum-constrained ones.
	RangeString RangeKind = iota
	// RangeInteger accepts integer values only.
	RangeInteger
	// RangeDecimal accepts integer values and string-rendered decimals.
	RangeDecimal
)

// FieldDef describes one induced field of a schema class.
type FieldDef struct {
	Name        string
	Range       RangeKind
	Multivalued bool
	Required    bool
	Identifier  bool
	// Attribute marks genuine data-carrying fields; fix resolution refuses
	// fields without it.
	Attribute bool
	// Permissible restricts values to an enumeration when non-empty,
	// compared on the value's display rendering.
	Permissible []string
}

// Violation is one schema-level finding for a single row.
type Violation struct {
	Field   string
	Message string
	Input   Value
}

// ForeignKey declares that a field of one class references the identifier
// of another class.
type ForeignKey struct {
	Field string
	Class SchemaClassID
}

// SchemaProvider exposes the schema knowledge the pipeline depends on.
// Implementations must be safe for concurrent use.
type SchemaProvider interface {
	// ClassFor resolves the schema class for an entity type under the given
	// bionetwork, falling back to the entity type's default class.
	ClassFor(entityType EntityType, bionetwork string) (SchemaClassID, error)
	// InducedFields returns the full field list of a class.
	InducedFields(class SchemaClassID) ([]FieldDef, error)
	// IdentifierField returns the name of the class's identifier field.
	IdentifierField(class SchemaClassID) (string, error)
	// ForeignKeys returns the class's references to other classes.
	ForeignKeys(class SchemaClassID) ([]ForeignKey, error)
	// EntityFor maps a class back to its entity type.
	EntityFor(class SchemaClassID) (EntityType, error)
	// ValidateInstance checks one normalized row against a class and
	// returns its violations. The error return is reserved for engine
	// failures such as an unknown class; it never signals row invalidity.
	ValidateInstance(class SchemaClassID, row NormalizedRow) ([]Violation, error)
}

// CellWrite is one pending cell replacement.
type CellWrite struct {
	// Cell is the A1 address of the target cell.
	Cell  string
	Value string
}

// SheetWriter commits cell writes to a single worksheet.
type SheetWriter interface {
	// BatchWrite applies all writes in one round trip.
	BatchWrite(ctx context.Context, writes []CellWrite) error
}

// SpreadsheetInfo is the outcome of a successful sheet read.
type SpreadsheetInfo struct {
	Metadata SpreadsheetMetadata
	// Worksheets holds the extracted table per requested entity type.
	Worksheets map[EntityType]*WorksheetData
	// Writers holds a write handle per worksheet when the sheet is
	// editable; nil entries mean the worksheet cannot be written.
	Writers map[EntityType]SheetWriter
}

// SheetReader acquires spreadsheet data for validation. Failures are
// reported as *ReadError so callers can surface the code on the result.
type SheetReader interface {
	Read(ctx context.Context, sheetID string, entityTypes []EntityType) (*SpreadsheetInfo, error)
}
