package analytics

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const matrixSheet = "WPH Matrix"

var matrixHeaders = []string{"Region", "Average WPH", "Product", "Total Weight", "Total Area", "WPH"}

func setCell(f *excelize.File, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(matrixSheet, cell, value)
}

// ExportMatrix renders the matrix as an xlsx workbook with one row per region and product.
func ExportMatrix(m MatrixResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(matrixSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	for i, h := range matrixHeaders {
		if err := setCell(f, i+1, 1, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(matrixSheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(matrixSheet, "A", "F", 18); err != nil {
		return nil, err
	}

	row := 2
	for _, region := range m.Regions {
		for _, p := range region.Products {
			values := []interface{}{region.RegionName, region.AverageWPH, p.ProductName, p.TotalWeight, p.TotalArea, p.WPH}
			for col, v := range values {
				if err := setCell(f, col+1, row, v); err != nil {
					return nil, fmt.Errorf("failed to set cell at row %d: %w", row, err)
				}
			}
			row++
		}
	}

	if err := f.SetPanes(matrixSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
