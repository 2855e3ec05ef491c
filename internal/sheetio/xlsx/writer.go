package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"sheetcurator/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SheetWriter = (*Writer)(nil)

// Writer commits cell writes to one worksheet of a workbook.
type Writer struct {
	Path  string
	Sheet string
}

// BatchWrite opens the workbook, applies every write, and saves once.
func (w *Writer) BatchWrite(ctx context.Context, writes []domain.CellWrite) error {
	if len(writes) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()
	for _, write := range writes {
		if err := f.SetCellValue(w.Sheet, write.Cell, write.Value); err != nil {
			return fmt.Errorf("set cell %s: %w", write.Cell, err)
		}
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
