// Package xlsx implements the sheet reader and writer contracts over local
// .xlsx workbooks. The sheet ID is the workbook's file path.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetcurator/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SheetReader = (*Reader)(nil)

// Reader loads entry-sheet workbooks from the local filesystem.
type Reader struct{}

// NewReader returns a workbook reader.
func NewReader() *Reader { return &Reader{} }

// Read opens the workbook and extracts one worksheet per requested entity
// type. Failures are reported as *domain.ReadError.
func (r *Reader) Read(ctx context.Context, sheetID string, entityTypes []domain.EntityType) (*domain.SpreadsheetInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stat, err := os.Stat(sheetID)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ReadError{
				Code:    domain.CodeSheetNotFound,
				Message: fmt.Sprintf("workbook %s not found", sheetID),
			}
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, &domain.ReadError{Code: domain.CodePermissionDenied, Message: err.Error()}
		}
		return nil, &domain.ReadError{Code: domain.CodeAPIError, Message: err.Error()}
	}
	canEdit := stat.Mode().Perm()&0o200 != 0

	f, err := excelize.OpenFile(sheetID)
	if err != nil {
		return nil, &domain.ReadError{Code: domain.CodeAPIError, Message: err.Error()}
	}
	defer func() { _ = f.Close() }()

	metadata := r.metadata(f, canEdit)
	sheets := f.GetSheetList()
	info := &domain.SpreadsheetInfo{
		Metadata:   metadata,
		Worksheets: map[domain.EntityType]*domain.WorksheetData{},
		Writers:    map[domain.EntityType]domain.SheetWriter{},
	}
	for _, entityType := range entityTypes {
		structure, ok := domain.SheetStructures[entityType]
		if !ok {
			return nil, &domain.ReadError{
				Code:     domain.CodeWorksheetNotFound,
				Message:  fmt.Sprintf("entity type %s has no worksheet", entityType),
				Metadata: &metadata,
			}
		}
		if structure.WorksheetIndex >= len(sheets) {
			id := structure.WorksheetIndex
			return nil, &domain.ReadError{
				Code:        domain.CodeWorksheetNotFound,
				Message:     fmt.Sprintf("workbook has no worksheet at index %d for %s", structure.WorksheetIndex, entityType),
				Metadata:    &metadata,
				WorksheetID: &id,
			}
		}
		sheetName := sheets[structure.WorksheetIndex]
		ws, err := r.worksheet(f, sheetName, structure.WorksheetIndex, &metadata)
		if err != nil {
			return nil, err
		}
		info.Worksheets[entityType] = ws
		if canEdit {
			info.Writers[entityType] = &Writer{Path: sheetID, Sheet: sheetName}
		}
	}
	return info, nil
}

// worksheet extracts one sheet's header and data rows. The header row is
// consumed here, so data rows start at sheet row 2 and SourceRowsStart is 1.
func (r *Reader) worksheet(f *excelize.File, sheetName string, index int, metadata *domain.SpreadsheetMetadata) (*domain.WorksheetData, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, &domain.ReadError{Code: domain.CodeAPIError, Message: err.Error(), Metadata: metadata}
	}
	if len(rows) < 2 {
		id := index
		return nil, &domain.ReadError{
			Code:        domain.CodeSheetDataEmpty,
			Message:     fmt.Sprintf("worksheet %s has no rows below the header", sheetName),
			Metadata:    metadata,
			WorksheetID: &id,
		}
	}
	headers := rows[0]
	data := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				cells[header] = row[i]
			} else {
				cells[header] = ""
			}
		}
		data = append(data, cells)
	}
	return &domain.WorksheetData{
		WorksheetID:     index,
		Rows:            data,
		SourceColumns:   headers,
		SourceRowsStart: 1,
	}, nil
}

func (r *Reader) metadata(f *excelize.File, canEdit bool) domain.SpreadsheetMetadata {
	metadata := domain.SpreadsheetMetadata{CanEdit: canEdit}
	props, err := f.GetDocProps()
	if err != nil || props == nil {
		return metadata
	}
	metadata.Title = props.Title
	metadata.LastUpdatedBy = props.LastModifiedBy
	if props.Modified != "" {
		if ts, err := time.Parse(time.RFC3339, props.Modified); err == nil {
			metadata.LastUpdated = ts
		}
	}
	return metadata
}
