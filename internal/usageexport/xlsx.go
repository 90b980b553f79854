package usageexport

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"ledgerlens/internal/domain"
)

const xlsxSheet = "Token Usage"

// WriteXLSX returns an XLSX workbook (as bytes) containing the given usage
// records, one row per record under the same columns as the CSV export.
func WriteXLSX(recs []domain.UsageRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(xlsxSheet, cell, h)
	}

	row := 2
	for i := range recs {
		rec := &recs[i]

		write := func(col int, v interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(xlsxSheet, cell, v)
		}

		write(1, rec.ID)
		write(2, rec.CreatedAt.Format(time.RFC3339))
		write(3, rec.Filename)
		write(4, rec.Buyer)
		write(5, rec.Template)
		write(6, rec.Provider)
		write(7, rec.Model)
		write(8, rec.PromptTokens)
		write(9, rec.CompletionTokens)
		write(10, rec.TotalTokens)
		write(11, rec.PromptCost)
		write(12, rec.CompletionCost)
		write(13, rec.TotalCost)
		write(14, formatBool(rec.Success))
		write(15, rec.ErrorMessage)
		write(16, rec.NumPages)

		row++
	}

	// Widen the columns that hold long values.
	_ = f.SetColWidth(xlsxSheet, "B", "B", 22) // created at
	_ = f.SetColWidth(xlsxSheet, "C", "C", 32) // filename
	_ = f.SetColWidth(xlsxSheet, "D", "E", 18) // buyer, template
	_ = f.SetColWidth(xlsxSheet, "G", "G", 32) // model
	_ = f.SetColWidth(xlsxSheet, "O", "O", 48) // error message

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
