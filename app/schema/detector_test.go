package schema

import (
	"strconv"
	"testing"

	"github.com/postpulse/analytics-engine/app/workbook"
)

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	aliases, err := NewAliasSet()
	if err != nil {
		t.Fatalf("Failed to load aliases: %v", err)
	}
	return NewNormalizer(aliases)
}

func testCell(value string) workbook.Cell {
	if value == "" {
		return workbook.Cell{Kind: workbook.CellEmpty}
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return workbook.Cell{Kind: workbook.CellNumber, Text: value, Number: n}
	}
	return workbook.Cell{Kind: workbook.CellString, Text: value}
}

func testSheet(name string, rows ...[]string) workbook.Sheet {
	sheet := workbook.Sheet{Name: name}
	for _, row := range rows {
		cells := make([]workbook.Cell, len(row))
		for i, value := range row {
			cells[i] = testCell(value)
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

func companyPostsSheet(rows ...[]string) workbook.Sheet {
	all := [][]string{{"Post URL", "Post Date", "Impressions", "Clicks", "Reactions", "Comments", "Shares"}}
	all = append(all, rows...)
	return testSheet("All posts", all...)
}

func TestDetect_Company(t *testing.T) {
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		companyPostsSheet([]string{"https://example.com/p/1", "2024-02-01", "100", "4", "10", "2", "1"}),
	}}

	exportType, ok := n.Detect(wb)
	if !ok {
		t.Fatal("Expected detection to succeed")
	}
	if exportType != ExportTypeCompany {
		t.Errorf("Expected company export, got %s", exportType)
	}
}

func TestDetect_Personal(t *testing.T) {
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		testSheet("ENGAGEMENT",
			[]string{"Date", "Impressions", "Engagements"},
			[]string{"2024-02-01", "150", "12"},
		),
		testSheet("TOP POSTS",
			[]string{"Post URL", "Publish Date", "Engagements"},
			[]string{"https://example.com/p/1", "2024-02-01", "12"},
		),
	}}

	exportType, ok := n.Detect(wb)
	if !ok {
		t.Fatal("Expected detection to succeed")
	}
	if exportType != ExportTypePersonal {
		t.Errorf("Expected personal export, got %s", exportType)
	}
}

func TestDetect_PersonalWinsOverCompanySheet(t *testing.T) {
	// A workbook carrying both personal-only sheets and a generic posts
	// sheet must classify as personal.
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		companyPostsSheet([]string{"https://example.com/p/1", "2024-02-01", "100", "4", "10", "2", "1"}),
		testSheet("TOP POSTS",
			[]string{"Post URL", "Publish Date", "Engagements"},
			[]string{"https://example.com/p/1", "2024-02-01", "12"},
		),
	}}

	exportType, ok := n.Detect(wb)
	if !ok {
		t.Fatal("Expected detection to succeed")
	}
	if exportType != ExportTypePersonal {
		t.Errorf("Expected personal export to win, got %s", exportType)
	}
}

func TestDetect_DailySheetAloneIsPersonal(t *testing.T) {
	// Single-sheet CSV exports have no sheet names to go by; the header
	// signature alone must be enough.
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		testSheet("export",
			[]string{"Date", "Impressions", "Engagements"},
			[]string{"2024-02-01", "150", "12"},
		),
	}}

	exportType, ok := n.Detect(wb)
	if !ok {
		t.Fatal("Expected detection to succeed")
	}
	if exportType != ExportTypePersonal {
		t.Errorf("Expected personal export, got %s", exportType)
	}
}

func TestDetect_GermanHeaders(t *testing.T) {
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		testSheet("ENGAGEMENT",
			[]string{"Datum", "Impressionen", "Interaktionen"},
			[]string{"2024-02-01", "150", "12"},
		),
	}}

	exportType, ok := n.Detect(wb)
	if !ok {
		t.Fatal("Expected detection to succeed with localized headers")
	}
	if exportType != ExportTypePersonal {
		t.Errorf("Expected personal export, got %s", exportType)
	}
}

func TestDetect_Unknown(t *testing.T) {
	n := testNormalizer(t)
	wb := &workbook.Workbook{Sheets: []workbook.Sheet{
		testSheet("Sheet1",
			[]string{"Foo", "Bar"},
			[]string{"1", "2"},
		),
	}}

	if _, ok := n.Detect(wb); ok {
		t.Error("Expected detection to fail for unrecognizable sheets")
	}
}

func TestFindHeader_SkipsPreamble(t *testing.T) {
	n := testNormalizer(t)
	sheet := testSheet("ENGAGEMENT",
		[]string{"Analytics report 2024"},
		[]string{""},
		[]string{"Date", "Impressions", "Engagements"},
		[]string{"2024-02-01", "150", "12"},
	)

	h, ok := n.findHeader(&sheet)
	if !ok {
		t.Fatal("Expected header to be found below the preamble")
	}
	if h.firstRow != 3 {
		t.Errorf("Expected data to start at row 3, got %d", h.firstRow)
	}
	if !h.has("date", "impressions", "engagements") {
		t.Errorf("Expected all three columns to resolve, got %v", h.columns)
	}
}
