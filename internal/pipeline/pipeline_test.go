package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"sheetcurator/internal/fix"
	"sheetcurator/internal/schema"
	"sheetcurator/pkg/domain"
)

// fakeWorksheet is a mutable in-memory worksheet backing the fake reader.
// Rows hold the full extracted row set including the leading header block.
type fakeWorksheet struct {
	id      int
	columns []string
	rows    []map[string]string
}

type fakeSheet struct {
	metadata   domain.SpreadsheetMetadata
	worksheets map[domain.EntityType]*fakeWorksheet
	readErr    error
	writeErr   error
	reads      int
}

func (f *fakeSheet) Read(_ context.Context, _ string, entityTypes []domain.EntityType) (*domain.SpreadsheetInfo, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	info := &domain.SpreadsheetInfo{
		Metadata:   f.metadata,
		Worksheets: map[domain.EntityType]*domain.WorksheetData{},
		Writers:    map[domain.EntityType]domain.SheetWriter{},
	}
	for _, entityType := range entityTypes {
		ws, ok := f.worksheets[entityType]
		if !ok {
			continue
		}
		rows := make([]map[string]string, len(ws.rows))
		for i, row := range ws.rows {
			copied := make(map[string]string, len(row))
			for k, v := range row {
				copied[k] = v
			}
			rows[i] = copied
		}
		info.Worksheets[entityType] = &domain.WorksheetData{
			WorksheetID:     ws.id,
			Rows:            rows,
			SourceColumns:   ws.columns,
			SourceRowsStart: 1,
		}
		if f.metadata.CanEdit {
			info.Writers[entityType] = &fakeWriter{ws: ws, fail: f.writeErr}
		}
	}
	return info, nil
}

// fakeWriter commits A1-addressed writes back into the backing worksheet.
type fakeWriter struct {
	ws      *fakeWorksheet
	fail    error
	batches int
}

func (w *fakeWriter) BatchWrite(_ context.Context, writes []domain.CellWrite) error {
	w.batches++
	if w.fail != nil {
		return w.fail
	}
	for _, write := range writes {
		letters := strings.TrimRight(write.Cell, "0123456789")
		rowNum, err := strconv.Atoi(write.Cell[len(letters):])
		if err != nil {
			return fmt.Errorf("bad cell %q: %w", write.Cell, err)
		}
		col := 0
		for _, r := range letters {
			col = col*26 + int(r-'A') + 1
		}
		// SourceRowsStart is 1, so sheet row n maps to extracted row n-1,
		// which is rows slice index n-2.
		w.ws.rows[rowNum-2][w.ws.columns[col-1]] = write.Value
	}
	return nil
}

type captureLogger struct {
	errors []string
	infos  []string
}

func (l *captureLogger) Debug(string, ...any)       {}
func (l *captureLogger) Info(msg string, _ ...any)  { l.infos = append(l.infos, msg) }
func (l *captureLogger) Warn(string, ...any)        {}
func (l *captureLogger) Error(msg string, _ ...any) { l.errors = append(l.errors, msg) }

func donorRow(id, mannerOfDeath string) map[string]string {
	return map[string]string{
		"donor_id":                  id,
		"dataset_id":                "ds-1",
		"organism_ontology_term_id": "NCBITaxon:9606",
		"sex_ontology_term_id":      "PATO:0000384",
		"manner_of_death":           mannerOfDeath,
	}
}

func donorSheet(canEdit bool, manners ...string) *fakeSheet {
	donorColumns := []string{
		"donor_id", "dataset_id", "organism_ontology_term_id",
		"sex_ontology_term_id", "manner_of_death",
	}
	donorRows := []map[string]string{
		{"donor_id": "Donor ID"},
		{"donor_id": "description"},
		{"donor_id": "example"},
		{"donor_id": "flags"},
	}
	for i, manner := range manners {
		donorRows = append(donorRows, donorRow(fmt.Sprintf("d-%d", i+1), manner))
	}
	datasetRows := []map[string]string{
		{"dataset_id": "Dataset ID"},
		{"dataset_id": "description"},
		{"dataset_id": "example"},
		{"dataset_id": "flags"},
		{"dataset_id": "ds-1"},
	}
	return &fakeSheet{
		metadata: domain.SpreadsheetMetadata{Title: "entry sheet", CanEdit: canEdit},
		worksheets: map[domain.EntityType]*fakeWorksheet{
			domain.EntityDonor:   {id: 201, columns: donorColumns, rows: donorRows},
			domain.EntityDataset: {id: 101, columns: []string{"dataset_id"}, rows: datasetRows},
		},
	}
}

// donorOnly requests just the donor worksheet so dataset schema findings do
// not interfere with the case under test.
var donorOnly = Request{EntityTypes: []domain.EntityType{domain.EntityDonor}}

func newPipeline(reader domain.SheetReader, opts ...Option) (*Pipeline, *captureLogger) {
	logger := &captureLogger{}
	return New(reader, schema.NewProvider(), logger, opts...), logger
}

func TestValidateCleanSheet(t *testing.T) {
	p, _ := newPipeline(donorSheet(false, "unknown", "1"))
	result, err := p.Validate(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !result.Successful {
		t.Fatalf("result not successful: %+v", result.Errors)
	}
	if n := result.Summary.Counts[domain.EntityDonor]; n == nil || *n != 2 {
		t.Fatalf("donor count = %v, want 2", n)
	}
	if result.Summary.ErrorCount != 0 {
		t.Fatalf("error count = %d, want 0", result.Summary.ErrorCount)
	}
}

func TestValidateReadFailure(t *testing.T) {
	p, _ := newPipeline(&fakeSheet{
		readErr: &domain.ReadError{Code: domain.CodeSheetNotFound, Message: "sheet sheet-404 not found"},
	})
	result, err := p.Validate(context.Background(), "sheet-404", donorOnly)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.Successful {
		t.Fatalf("read failure should not be successful")
	}
	if result.ErrorCode != domain.CodeSheetNotFound {
		t.Fatalf("error code = %s, want sheet_not_found", result.ErrorCode)
	}
	if result.Summary.ErrorCount != 1 || len(result.Errors) != 1 {
		t.Fatalf("summary = %+v, errors = %+v", result.Summary, result.Errors)
	}
	if count := result.Summary.Counts[domain.EntityDonor]; count != nil {
		t.Fatalf("donor count = %v, want nil", count)
	}
}

func TestValidateNoData(t *testing.T) {
	sheet := donorSheet(false)
	p, _ := newPipeline(sheet)
	result, err := p.Validate(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if result.ErrorCode != domain.CodeNoData {
		t.Fatalf("error code = %s, want no_data", result.ErrorCode)
	}
	if len(result.Errors) != 1 || result.Errors[0].WorksheetID == nil || *result.Errors[0].WorksheetID != 201 {
		t.Fatalf("errors = %+v", result.Errors)
	}
	if result.Errors[0].EntityType != domain.EntityDonor {
		t.Fatalf("entity type = %q, want donor", result.Errors[0].EntityType)
	}
}

func TestValidateInvalidArguments(t *testing.T) {
	p, _ := newPipeline(donorSheet(false, "unknown"))
	if _, err := p.Validate(context.Background(), "s", Request{Bionetwork: "brain"}); err == nil {
		t.Fatalf("expected error for unknown bionetwork")
	}
	if _, err := p.Validate(context.Background(), "s", Request{
		EntityTypes: []domain.EntityType{domain.EntityCell},
	}); err == nil {
		t.Fatalf("expected error for entity type without worksheet")
	}
}

func TestProcessNotEditableMatchesValidate(t *testing.T) {
	sheet := donorSheet(false, "not_applicable")
	p, _ := newPipeline(sheet)
	result, err := p.Process(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Successful {
		t.Fatalf("expected validation errors")
	}
	for _, e := range result.Errors {
		if e.InputFix != "" {
			t.Fatalf("non-editable sheet must not carry fix annotations: %+v", e)
		}
	}
	if sheet.reads != 1 {
		t.Fatalf("reads = %d, want 1", sheet.reads)
	}
}

func TestProcessAppliesFixesAndRevalidates(t *testing.T) {
	sheet := donorSheet(true, "not_applicable", "unknown")
	p, logger := newPipeline(sheet)
	result, err := p.Process(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !result.Successful {
		t.Fatalf("expected convergence, got errors: %+v", result.Errors)
	}
	if sheet.reads != 2 {
		t.Fatalf("reads = %d, want validate + revalidate", sheet.reads)
	}
	if got := sheet.worksheets[domain.EntityDonor].rows[4]["manner_of_death"]; got != "not applicable" {
		t.Fatalf("backing cell = %q, want repaired value", got)
	}
	if len(logger.errors) != 0 {
		t.Fatalf("unexpected anomaly logs: %v", logger.errors)
	}
}

func TestProcessNonConvergenceLogsAnomaly(t *testing.T) {
	// A fix table whose repair is itself invalid and fixable keeps the
	// error alive across the revalidation pass.
	table := fix.Table{
		{Entity: domain.EntityDonor, Field: "manner_of_death", Value: "not_applicable"}:       "still_not_applicable",
		{Entity: domain.EntityDonor, Field: "manner_of_death", Value: "still_not_applicable"}: "not applicable",
	}
	sheet := donorSheet(true, "not_applicable")
	p, logger := newPipeline(sheet, WithFixTable(table))
	result, err := p.Process(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Successful {
		t.Fatalf("expected the repaired value to remain invalid")
	}
	if sheet.reads != 2 {
		t.Fatalf("reads = %d, want exactly one revalidation", sheet.reads)
	}
	if len(logger.errors) == 0 {
		t.Fatalf("expected a non-convergence anomaly log")
	}
	// The anomaly pass is detection only: the returned errors carry no
	// fix annotations and nothing was written a second time.
	for _, e := range result.Errors {
		if e.InputFix != "" {
			t.Fatalf("revalidated error carries fix annotation: %+v", e)
		}
	}
	if got := sheet.worksheets[domain.EntityDonor].rows[4]["manner_of_death"]; got != "still_not_applicable" {
		t.Fatalf("backing cell = %q; revalidation must not write", got)
	}
}

func TestProcessWriteFailureDegradesToWholeSheetResult(t *testing.T) {
	sheet := donorSheet(true, "not_applicable")
	sheet.writeErr = errors.New("quota exceeded")
	p, logger := newPipeline(sheet)
	result, err := p.Process(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Successful {
		t.Fatalf("write failure should not be successful")
	}
	if result.ErrorCode != domain.CodeAPIError {
		t.Fatalf("error code = %s, want api_error", result.ErrorCode)
	}
	if result.Summary.ErrorCount != 1 || len(result.Errors) != 1 {
		t.Fatalf("summary = %+v, errors = %+v", result.Summary, result.Errors)
	}
	if count, ok := result.Summary.Counts[domain.EntityDonor]; !ok || count != nil {
		t.Fatalf("donor count = %v, want null", count)
	}
	if sheet.reads != 1 {
		t.Fatalf("reads = %d; failed write must not trigger revalidation", sheet.reads)
	}
	if len(logger.errors) == 0 {
		t.Fatalf("expected the write failure to be logged")
	}
}

func TestProcessNoFixableErrors(t *testing.T) {
	sheet := donorSheet(true, "bogus_manner")
	p, _ := newPipeline(sheet)
	result, err := p.Process(context.Background(), "sheet-1", donorOnly)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Successful {
		t.Fatalf("expected errors to remain")
	}
	if sheet.reads != 1 {
		t.Fatalf("reads = %d; nothing was written so no revalidation", sheet.reads)
	}
}
