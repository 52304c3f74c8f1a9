package schema

import (
	"strings"

	"github.com/postpulse/analytics-engine/app/workbook"
)

// header is the resolved header row of a sheet: canonical field name to
// column index, plus the row index the data starts at.
type header struct {
	columns  map[string]int
	firstRow int
}

func (h *header) has(fields ...string) bool {
	for _, f := range fields {
		if _, ok := h.columns[f]; !ok {
			return false
		}
	}
	return true
}

func (h *header) hasAny(fields ...string) bool {
	for _, f := range fields {
		if _, ok := h.columns[f]; ok {
			return true
		}
	}
	return false
}

// headerScanDepth limits how deep we probe for a header row; exports
// sometimes carry a title or note rows above the actual table.
const headerScanDepth = 10

// findHeader locates the first row with at least two recognizable column
// labels and maps canonical field names to column indexes.
func (n *Normalizer) findHeader(sheet *workbook.Sheet) (*header, bool) {
	depth := headerScanDepth
	if len(sheet.Rows) < depth {
		depth = len(sheet.Rows)
	}

	for rowIdx := 0; rowIdx < depth; rowIdx++ {
		columns := make(map[string]int)
		for colIdx, cell := range sheet.Rows[rowIdx] {
			if cell.IsEmpty() {
				continue
			}
			if field := n.aliases.Resolve(cell.Text); field != "" {
				if _, taken := columns[field]; !taken {
					columns[field] = colIdx
				}
			}
		}
		if len(columns) >= 2 {
			return &header{columns: columns, firstRow: rowIdx + 1}, true
		}
	}

	return nil, false
}

func sheetNameContains(sheet *workbook.Sheet, fragments ...string) bool {
	name := strings.ToLower(sheet.Name)
	for _, fragment := range fragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// findTopPostsSheet locates the personal-only capped top-posts sheet.
func (n *Normalizer) findTopPostsSheet(wb *workbook.Workbook) (*workbook.Sheet, *header) {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if !sheetNameContains(sheet, "top post", "top-post", "top posts", "top-beitr") {
			continue
		}
		if h, ok := n.findHeader(sheet); ok && h.has("post_url") {
			return sheet, h
		}
	}
	return nil, nil
}

// findDailySheet locates the personal daily engagement series: dated rows
// of impressions/engagements with no per-post column.
func (n *Normalizer) findDailySheet(wb *workbook.Workbook) (*workbook.Sheet, *header) {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		h, ok := n.findHeader(sheet)
		if !ok {
			continue
		}
		if h.has("date") && h.hasAny("impressions", "engagements") &&
			!h.has("post_url") && !h.has("new_followers") {
			return sheet, h
		}
	}
	return nil, nil
}

// findCompanyPostsSheet locates the company per-post breakdown: post rows
// with individually itemized reactions/comments/shares.
func (n *Normalizer) findCompanyPostsSheet(wb *workbook.Workbook) (*workbook.Sheet, *header) {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		h, ok := n.findHeader(sheet)
		if !ok {
			continue
		}
		if h.has("post_url") && h.hasAny("reactions", "comments", "shares") {
			return sheet, h
		}
	}
	return nil, nil
}

func (n *Normalizer) findFollowersSheet(wb *workbook.Workbook) (*workbook.Sheet, *header) {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		h, ok := n.findHeader(sheet)
		if !ok {
			continue
		}
		if h.has("date", "new_followers") {
			return sheet, h
		}
	}
	return nil, nil
}

func (n *Normalizer) findDiscoverySheet(wb *workbook.Workbook) *workbook.Sheet {
	for i := range wb.Sheets {
		sheet := &wb.Sheets[i]
		if sheetNameContains(sheet, "discovery", "entdeck") {
			return sheet
		}
	}
	return nil
}

// Detect determines which export schema the workbook carries. Personal
// markers win over a generic posts sheet: a company page cannot produce
// the personal-only sheets, so their presence is decisive.
func (n *Normalizer) Detect(wb *workbook.Workbook) (ExportType, bool) {
	if sheet, _ := n.findTopPostsSheet(wb); sheet != nil {
		return ExportTypePersonal, true
	}
	if sheet, _ := n.findDailySheet(wb); sheet != nil {
		return ExportTypePersonal, true
	}
	if sheet, _ := n.findCompanyPostsSheet(wb); sheet != nil {
		return ExportTypeCompany, true
	}
	return "", false
}
