package workbook

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS decodes the legacy binary (BIFF) spreadsheet container.
func readXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
	}

	count := book.NumSheets()
	if count == 0 {
		return nil, fmt.Errorf("%w: no sheets found", ErrCorruptFile)
	}

	wb := &Workbook{Sheets: make([]Sheet, 0, count)}
	for i := 0; i < count; i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}

		var rows [][]string
		for rowIdx := 0; rowIdx <= int(sheet.MaxRow); rowIdx++ {
			row := sheet.Row(rowIdx)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol()+1)
			for colIdx := 0; colIdx <= row.LastCol(); colIdx++ {
				cells = append(cells, row.Col(colIdx))
			}
			rows = append(rows, cells)
		}

		wb.Sheets = append(wb.Sheets, Sheet{Name: sheet.Name, Rows: rowsToCells(rows)})
	}

	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("%w: no readable sheets", ErrCorruptFile)
	}

	return wb, nil
}
