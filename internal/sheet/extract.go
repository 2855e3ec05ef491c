// Package sheet extracts the data region of a worksheet and normalizes its
// raw cells into typed values.
package sheet

import (
	"errors"
	"strings"

	"sheetcurator/pkg/domain"
)

// dataStartOffset is the number of extracted rows preceding the data region:
// the description, example, and flag rows that follow the header block.
const dataStartOffset = 4

// ErrNoData reports a worksheet whose data region is empty.
var ErrNoData = errors.New("worksheet contains no data rows")

// Extract returns the data rows of a worksheet: rows after the fixed leading
// block, stopping at the first fully blank row. Row indices are 1-based
// positions within the full extracted row set, so the first data row of a
// standard sheet has Index 5.
func Extract(ws *domain.WorksheetData) ([]domain.RawRow, error) {
	if len(ws.Rows) <= dataStartOffset {
		return nil, ErrNoData
	}
	var rows []domain.RawRow
	for i := dataStartOffset; i < len(ws.Rows); i++ {
		if blankRow(ws.Rows[i]) {
			break
		}
		rows = append(rows, domain.RawRow{Index: i + 1, Cells: ws.Rows[i]})
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

func blankRow(cells map[string]string) bool {
	for _, v := range cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
