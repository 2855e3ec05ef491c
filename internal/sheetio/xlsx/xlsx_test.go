package xlsx

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"sheetcurator/pkg/domain"
)

// writeWorkbook creates a workbook whose first sheet holds a dataset table:
// header row, four leading descriptor rows, then data rows.
func writeWorkbook(t *testing.T, dir string, datasetIDs ...string) string {
	t.Helper()
	f := excelize.NewFile()
	sheetName := f.GetSheetName(0)
	if err := f.SetCellValue(sheetName, "A1", "dataset_id"); err != nil {
		t.Fatalf("set header: %v", err)
	}
	if err := f.SetCellValue(sheetName, "B1", "title"); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for row := 2; row <= 5; row++ {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheetName, cell, "descriptor"); err != nil {
			t.Fatalf("set descriptor: %v", err)
		}
	}
	for i, id := range datasetIDs {
		cell, _ := excelize.CoordinatesToCellName(1, 6+i)
		if err := f.SetCellValue(sheetName, cell, id); err != nil {
			t.Fatalf("set data: %v", err)
		}
	}
	path := filepath.Join(dir, "entry.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

var datasetOnly = []domain.EntityType{domain.EntityDataset}

func TestReadWorkbook(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "ds-1", "ds-2")
	info, err := NewReader().Read(context.Background(), path, datasetOnly)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	ws := info.Worksheets[domain.EntityDataset]
	if ws == nil {
		t.Fatalf("no dataset worksheet")
	}
	if ws.SourceRowsStart != 1 {
		t.Fatalf("source rows start = %d, want 1", ws.SourceRowsStart)
	}
	if len(ws.SourceColumns) != 2 || ws.SourceColumns[0] != "dataset_id" {
		t.Fatalf("columns = %v", ws.SourceColumns)
	}
	// Four descriptor rows plus two data rows below the header.
	if len(ws.Rows) != 6 {
		t.Fatalf("rows = %d, want 6", len(ws.Rows))
	}
	if ws.Rows[4]["dataset_id"] != "ds-1" || ws.Rows[5]["dataset_id"] != "ds-2" {
		t.Fatalf("data rows = %v", ws.Rows[4:])
	}
	if !info.Metadata.CanEdit {
		t.Fatalf("temp workbook should be editable")
	}
	if info.Writers[domain.EntityDataset] == nil {
		t.Fatalf("editable workbook should expose a writer")
	}
}

func TestReadMissingWorkbook(t *testing.T) {
	_, err := NewReader().Read(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"), datasetOnly)
	var readErr *domain.ReadError
	if !errors.As(err, &readErr) || readErr.Code != domain.CodeSheetNotFound {
		t.Fatalf("err = %v, want sheet_not_found", err)
	}
}

func TestReadMissingWorksheet(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "ds-1")
	_, err := NewReader().Read(context.Background(), path, []domain.EntityType{domain.EntityDonor})
	var readErr *domain.ReadError
	if !errors.As(err, &readErr) || readErr.Code != domain.CodeWorksheetNotFound {
		t.Fatalf("err = %v, want worksheet_not_found", err)
	}
}

func TestReadEmptyWorksheet(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue(f.GetSheetName(0), "A1", "dataset_id"); err != nil {
		t.Fatalf("set header: %v", err)
	}
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_, err := NewReader().Read(context.Background(), path, datasetOnly)
	var readErr *domain.ReadError
	if !errors.As(err, &readErr) || readErr.Code != domain.CodeSheetDataEmpty {
		t.Fatalf("err = %v, want sheet_data_empty", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	path := writeWorkbook(t, t.TempDir(), "surgical_resection")
	ctx := context.Background()
	info, err := NewReader().Read(ctx, path, datasetOnly)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	writer := info.Writers[domain.EntityDataset]
	if err := writer.BatchWrite(ctx, []domain.CellWrite{
		{Cell: "A6", Value: "surgical resection"},
	}); err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}
	reread, err := NewReader().Read(ctx, path, datasetOnly)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if got := reread.Worksheets[domain.EntityDataset].Rows[4]["dataset_id"]; got != "surgical resection" {
		t.Fatalf("cell after write = %q", got)
	}
}

func TestWriterNoWrites(t *testing.T) {
	w := &Writer{Path: "does-not-matter.xlsx", Sheet: "Sheet1"}
	if err := w.BatchWrite(context.Background(), nil); err != nil {
		t.Fatalf("empty batch should be a no-op, got %v", err)
	}
}
