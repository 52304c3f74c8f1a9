package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX decodes an Office Open XML container. Cell values are read
// formatted, so date cells surface with their display representation.
func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}
	defer func() { _ = f.Close() }()

	sheetNames := f.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrCorruptFile)
	}

	wb := &Workbook{Sheets: make([]Sheet, 0, len(sheetNames))}
	for _, name := range sheetNames {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read sheet %q: %v", ErrCorruptFile, name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rowsToCells(rows)})
	}

	return wb, nil
}
