// Package domain defines the entity types, value model, error records, and
// collaborator interfaces shared by the entry-sheet validation pipeline.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntityType identifies the kind of biological-metadata record held in one
// worksheet of an entry sheet.
type EntityType string

// Supported entity type identifiers.
const (
	// EntityDataset identifies a dataset record.
	EntityDataset EntityType = "dataset"
	// EntityDonor identifies a donor record.
	EntityDonor EntityType = "donor"
	// EntitySample identifies a sample record.
	EntitySample EntityType = "sample"
	// EntityCell identifies a cell record. Cells have a schema class but no
	// worksheet representation.
	EntityCell EntityType = "cell"
)

// DefaultEntityTypes lists the entity types validated when a caller does not
// request a subset, in worksheet order.
var DefaultEntityTypes = []EntityType{EntityDataset, EntityDonor, EntitySample}

// SheetStructure describes how one entity type is represented in a spreadsheet.
type SheetStructure struct {
	WorksheetIndex  int
	PrimaryKeyField string
}

// SheetStructures maps each sheet-representable entity type to its worksheet
// position and primary-key field. EntityCell intentionally has no entry.
var SheetStructures = map[EntityType]SheetStructure{
	EntityDataset: {WorksheetIndex: 0, PrimaryKeyField: "dataset_id"},
	EntityDonor:   {WorksheetIndex: 1, PrimaryKeyField: "donor_id"},
	EntitySample:  {WorksheetIndex: 2, PrimaryKeyField: "sample_id"},
}

// AllowedBionetworks enumerates the biological networks a sheet may be
// associated with.
var AllowedBionetworks = []string{
	"adipose",
	"breast",
	"development",
	"eye",
	"genetic-diversity",
	"gut",
	"heart",
	"immune",
	"kidney",
	"liver",
	"lung",
	"musculoskeletal",
	"nervous-system",
	"oral",
	"organoid",
	"pancreas",
	"reproduction",
	"skin",
}

// ValidBionetwork reports whether name is a known bionetwork. The empty
// string is valid and selects each entity type's default schema class.
func ValidBionetwork(name string) bool {
	if name == "" {
		return true
	}
	for _, n := range AllowedBionetworks {
		if n == name {
			return true
		}
	}
	return false
}

// ValueKind discriminates the variants of a normalized cell value.
type ValueKind int

// Normalized value variants.
const (
	// KindNull marks a blank or whitespace-only cell.
	KindNull ValueKind = iota
	// KindString holds free text or an unparseable typed value.
	KindString
	// KindInt holds a parsed integer.
	KindInt
	// KindList holds an ordered multivalued cell.
	KindList
)

// Value is a normalized spreadsheet cell: null, a string, an integer, or an
// ordered list of scalar values.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Items []Value
}

// NullValue returns the null variant.
func NullValue() Value { return Value{Kind: KindNull} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// ListValue wraps an ordered list of scalar values.
func ListValue(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, Items: items}
}

// IsNull reports whether the value is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Display renders the value for messages and identifier comparison. Null
// renders as the empty string.
func (v Value) Display() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindList:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.Display()
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// Equal reports deep equality of two values.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindInt:
		return v.Int == other.Int
	case KindList:
		if len(v.Items) != len(other.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(other.Items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// MarshalJSON encodes the value as its natural JSON form: null, string,
// number, or array.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindInt:
		return json.Marshal(v.Int)
	case KindList:
		return json.Marshal(v.Items)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes null, string, integral number, or array forms.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = NullValue()
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = ListValue(items...)
	default:
		var i int64
		if err := json.Unmarshal(data, &i); err != nil {
			return fmt.Errorf("decode value: %w", err)
		}
		*v = IntValue(i)
	}
	return nil
}

// NormalizedRow is one data row after normalization: typed values keyed by
// column name, with the post-drop column order retained alongside so cell
// lookups do not depend on map iteration order.
type NormalizedRow struct {
	// Index is the row's 1-based position within the worksheet's data
	// region, used for error attribution and cell addressing.
	Index   int
	Columns []string
	Values  map[string]Value
}

// Has reports whether the row carries the named column.
func (r NormalizedRow) Has(column string) bool {
	_, ok := r.Values[column]
	return ok
}

// RawRow is one extracted, not-yet-normalized data row.
type RawRow struct {
	Index int
	Cells map[string]string
}

// WorksheetData holds one entity type's extracted table along with the
// source layout needed to compute spreadsheet cell addresses.
type WorksheetData struct {
	// WorksheetID is the provider's identifier for the worksheet.
	WorksheetID int
	// Rows are the raw data rows, keyed by column header.
	Rows []map[string]string
	// SourceColumns are the headers in sheet order, including blank ones.
	SourceColumns []string
	// SourceRowsStart is the number of sheet rows preceding the first data
	// row (the header block).
	SourceRowsStart int
}

// CellAddress computes the A1-style address of the given 1-based data row
// and column name. Returns false when the column is not present in the
// source header row.
func (w *WorksheetData) CellAddress(row int, column string) (string, bool) {
	for i, name := range w.SourceColumns {
		if name == column {
			return A1(w.SourceRowsStart+row, i+1), true
		}
	}
	return "", false
}

// A1 converts 1-based row and column indices to A1 notation.
func A1(row, col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return fmt.Sprintf("%s%d", letters, row)
}

// ErrorCode is a machine-readable classification of a whole-sheet failure.
type ErrorCode string

// Whole-sheet error codes surfaced on ValidationResult.
const (
	CodeAuthMissing       ErrorCode = "auth_missing"
	CodeAuthUnresolved    ErrorCode = "auth_unresolved"
	CodeAuthInvalidFormat ErrorCode = "auth_invalid_format"
	CodeAuthError         ErrorCode = "auth_error"
	CodeSheetNotFound     ErrorCode = "sheet_not_found"
	CodeWorksheetNotFound ErrorCode = "worksheet_not_found"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeAPIError          ErrorCode = "api_error"
	CodeMaxAPIRetries     ErrorCode = "max_api_retries"
	CodeSheetDataEmpty    ErrorCode = "sheet_data_empty"
	CodeNoData            ErrorCode = "no_data"
	CodeValidationError   ErrorCode = "validation_error"
)

// SheetError records one validation violation or whole-sheet failure.
// A SheetError is immutable once reported except for InputFix, which the fix
// resolver may populate exactly once on a copy.
type SheetError struct {
	EntityType  EntityType `json:"entity_type,omitempty"`
	WorksheetID *int       `json:"worksheet_id,omitempty"`
	Message     string     `json:"message"`
	// Row is the 1-based data row index; zero means unattributed.
	Row        int    `json:"row,omitempty"`
	Column     string `json:"column,omitempty"`
	Cell       string `json:"cell,omitempty"`
	PrimaryKey string `json:"primary_key,omitempty"`
	Input      Value  `json:"input"`
	InputFix   string `json:"input_fix,omitempty"`
}

// Summary carries per-entity-type row counts and the total error count for
// one validation pass. A nil count means the entity type could not be read.
type Summary struct {
	Counts     map[EntityType]*int `json:"counts"`
	ErrorCount int                 `json:"error_count"`
}

// SummaryWithoutEntities builds the summary used for whole-sheet failures:
// every requested entity count is nil.
func SummaryWithoutEntities(entityTypes []EntityType, errorCount int) Summary {
	counts := make(map[EntityType]*int, len(entityTypes))
	for _, t := range entityTypes {
		counts[t] = nil
	}
	return Summary{Counts: counts, ErrorCount: errorCount}
}

// SpreadsheetMetadata describes the sheet document itself, as reported by
// the sheet provider. It is carried through the pipeline unmodified.
type SpreadsheetMetadata struct {
	Title            string    `json:"title"`
	LastUpdated      time.Time `json:"last_updated"`
	LastUpdatedBy    string    `json:"last_updated_by"`
	LastUpdatedEmail string    `json:"last_updated_email,omitempty"`
	CanEdit          bool      `json:"can_edit"`
}

// ValidationResult is the terminal output of one validation pass.
type ValidationResult struct {
	Successful bool                 `json:"successful"`
	Metadata   *SpreadsheetMetadata `json:"spreadsheet_metadata,omitempty"`
	ErrorCode  ErrorCode            `json:"error_code,omitempty"`
	Summary    Summary              `json:"summary"`
	Errors     []SheetError         `json:"errors"`
}

// ReadError reports a failure to acquire sheet data. It is terminal: no
// validation stage runs after one is returned.
type ReadError struct {
	Code        ErrorCode
	Message     string
	Metadata    *SpreadsheetMetadata
	WorksheetID *int
}

func (e *ReadError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}
