package workbook

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Read decodes raw file bytes into a Workbook. The filename is only used
// as a format hint (extension) and as the sheet name for single-table
// formats. Decoding is pure: no header interpretation happens here.
func Read(data []byte, filename string) (*Workbook, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptFile)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv", ".txt":
		return readCSV(data, filename)
	case ".xlsx":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// strict layouts recognized during decode; everything else stays a string
// for the normalizer to interpret in column context.
var cellDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
}

// classifyCell turns raw cell text into a tagged Cell. Numbers are detected
// via strconv, dates via a small set of unambiguous layouts.
func classifyCell(raw string) Cell {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Cell{Kind: CellEmpty}
	}

	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return Cell{Kind: CellNumber, Text: text, Number: n}
	}

	for _, layout := range cellDateLayouts {
		if d, err := time.Parse(layout, text); err == nil {
			return Cell{Kind: CellDate, Text: text, Date: d}
		}
	}

	return Cell{Kind: CellString, Text: text}
}

func rowsToCells(rows [][]string) [][]Cell {
	out := make([][]Cell, 0, len(rows))
	for _, row := range rows {
		cells := make([]Cell, len(row))
		for i, raw := range row {
			cells[i] = classifyCell(raw)
		}
		out = append(out, cells)
	}
	return out
}
