package workbook

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrCorruptFile       = errors.New("corrupt or unreadable file")
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellDate
)

// Cell is a tagged spreadsheet value. Text always holds the source
// representation so downstream parsing can fall back to it.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

type Sheet struct {
	Name string
	Rows [][]Cell
}

// Workbook is the decoded in-memory form of an uploaded export file.
// Sheets preserve the order they appear in the source file.
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the first sheet whose name contains the given fragment,
// compared case-insensitively. Returns nil if no sheet matches.
func (w *Workbook) Sheet(nameFragment string) *Sheet {
	fragment := strings.ToLower(nameFragment)
	for i := range w.Sheets {
		if strings.Contains(strings.ToLower(w.Sheets[i].Name), fragment) {
			return &w.Sheets[i]
		}
	}
	return nil
}
