package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/finance-intelligence/internal/domain/dataset"
)

// exportSheet names the sheet of written workbooks; Load prefers it on the way back.
const exportSheet = "transactions"

// Write serializes ds in the format implied by name so that Load can read it
// back. Null cells are written empty. Workbooks are always written as xlsx.
func Write(name string, w io.Writer, ds *dataset.Dataset) error {
	format, err := FormatFor(name)
	if err != nil {
		return err
	}
	if format == FormatExcel {
		return writeExcel(w, ds)
	}
	return writeCSV(w, ds)
}

// writeCSV uses ';' so comma decimals never need quoting.
func writeCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(ds.Names()); err != nil {
		return err
	}
	record := make([]string, ds.ColumnCount())
	for r := 0; r < ds.RowCount(); r++ {
		for c, cell := range ds.Row(r) {
			record[c] = cell.Value
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeExcel(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(ds.Names()))
	for i, n := range ds.Names() {
		header[i] = n
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for r := 0; r < ds.RowCount(); r++ {
		row := make([]interface{}, ds.ColumnCount())
		for c, cell := range ds.Row(r) {
			if cell.Valid {
				row[c] = cell.Value
			}
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	return f.Write(w)
}
