package production

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Suggestion"

// WriteXLSX renders the report as a single-sheet workbook: one row per entry
// followed by a total row.
func WriteXLSX(report *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, exportSheet); err != nil {
		return nil, err
	}

	header := []any{"Product ID", "Product", "Quantity", "Unit price", "Value"}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, e := range report.Entries {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		values := []any{
			e.ProductID,
			e.ProductName,
			e.Quantity,
			e.UnitPrice.InexactFloat64(),
			e.Value().InexactFloat64(),
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return nil, err
	}
	total := []any{"", "Total", "", "", report.TotalValue.InexactFloat64()}
	if err := f.SetSheetRow(exportSheet, cell, &total); err != nil {
		return nil, fmt.Errorf("write total: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
