package loader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// preferredSheets are tried in order before falling back to the first sheet.
var preferredSheets = []string{
	"transactions", "movimentos", "extrato", "lancamentos", "lançamentos", "statement", "data", "dados",
}

func loadExcel(data []byte) (*File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook (legacy .xls files must be saved as .xlsx): %w", err)
	}
	defer f.Close()

	sheet := findSheet(f.GetSheetList())
	if sheet == "" {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	ds, header, err := buildDataset(rows)
	if err != nil {
		return nil, err
	}
	return &File{Dataset: ds, Format: FormatExcel, Sheet: sheet, HeaderRow: header}, nil
}

func findSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range preferredSheets {
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), preferred) {
				return s
			}
		}
	}
	return sheets[0]
}
