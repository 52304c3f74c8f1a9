package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV decodes a comma-separated export into a single-sheet workbook.
// The sheet is named after the file (without extension) so the schema
// detector can still probe sheet names.
func readCSV(data []byte, filename string) (*Workbook, error) {
	reader := csv.NewReader(bytes.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptFile, err)
		}
		rows = append(rows, record)
	}

	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	return &Workbook{
		Sheets: []Sheet{{Name: name, Rows: rowsToCells(rows)}},
	}, nil
}

// decodeText transcodes exported text to UTF-8. Spreadsheet tools commonly
// write CSV as UTF-16 with a BOM, or UTF-8 with a BOM prefix.
func decodeText(data []byte) []byte {
	if len(data) >= 2 {
		isUTF16LE := data[0] == 0xFF && data[1] == 0xFE
		isUTF16BE := data[0] == 0xFE && data[1] == 0xFF
		if isUTF16LE || isUTF16BE {
			decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
			if decoded, _, err := transform.Bytes(decoder, data); err == nil {
				return decoded
			}
		}
	}

	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}
