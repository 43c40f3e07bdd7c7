package export

import (
	"strconv"

	"vivapickup/services/pickup"

	"github.com/xuri/excelize/v2"
)

// XLSX writes the rows to a single-sheet workbook. Quantity cells that
// parse as numbers are written as numbers so Excel sums work downstream.
type XLSX struct{}

func (XLSX) Write(path string, rows []pickup.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	err := f.SetSheetName("Sheet1", SheetName)
	if err != nil {
		return err
	}

	header := make([]any, pickup.ColumnCount)
	for i, h := range Headers {
		header[i] = h
	}
	err = f.SetSheetRow(SheetName, "A1", &header)
	if err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		err = f.SetSheetRow(SheetName, cell, rowValues(row))
		if err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func rowValues(row pickup.Row) *[]any {
	values := make([]any, pickup.ColumnCount)
	for i, v := range row {
		if i == quantityColumn && v != "" {
			qty, err := strconv.ParseFloat(v, 64)
			if err == nil {
				values[i] = qty
				continue
			}
		}
		values[i] = v
	}
	return &values
}
