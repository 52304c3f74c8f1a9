package schema

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/postpulse/analytics-engine/app/workbook"
)

// topPostsCap matches the row limit of the personal top-posts sheet.
const topPostsCap = 50

// Normalizer maps raw workbook sheets into canonical records. Row-level
// problems are collected as warnings instead of aborting the import.
type Normalizer struct {
	aliases *AliasSet
}

func NewNormalizer(aliases *AliasSet) *Normalizer {
	return &Normalizer{aliases: aliases}
}

// Run detects the export schema and normalizes all relevant sheets.
func (n *Normalizer) Run(wb *workbook.Workbook) (*ImportData, error) {
	exportType, ok := n.Detect(wb)
	if !ok {
		return nil, fmt.Errorf("%w: no recognizable sheets", ErrEmptyImport)
	}

	data := &ImportData{ExportType: exportType}

	switch exportType {
	case ExportTypeCompany:
		n.normalizeCompany(wb, data)
	case ExportTypePersonal:
		n.normalizePersonal(wb, data)
	}

	if len(data.Posts) == 0 {
		return nil, fmt.Errorf("%w", ErrEmptyImport)
	}

	return data, nil
}

func (n *Normalizer) normalizeCompany(wb *workbook.Workbook, data *ImportData) {
	sheet, h := n.findCompanyPostsSheet(wb)
	if sheet == nil {
		return
	}

	for rowIdx := h.firstRow; rowIdx < len(sheet.Rows); rowIdx++ {
		row := sheet.Rows[rowIdx]
		if rowEmpty(row) {
			continue
		}

		post, err := n.parseCompanyRow(row, h)
		if err != nil {
			data.Warnings = append(data.Warnings,
				fmt.Sprintf("%s row %d skipped: %v", sheet.Name, rowIdx+1, err))
			continue
		}
		data.Posts = append(data.Posts, *post)
	}
}

func (n *Normalizer) parseCompanyRow(row []workbook.Cell, h *header) (*ParsedPost, error) {
	permalink, err := parsePermalink(cellAt(row, h, "post_url"))
	if err != nil {
		return nil, err
	}

	postedAt, err := parseDate(cellAt(row, h, "date"))
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	post := &ParsedPost{
		Permalink:   permalink,
		Content:     cellAt(row, h, "content").Text,
		PostedAt:    postedAt,
		Reactions:   cellCount(cellAt(row, h, "reactions")),
		Comments:    cellCount(cellAt(row, h, "comments")),
		Shares:      cellCount(cellAt(row, h, "shares")),
		Impressions: cellCount(cellAt(row, h, "impressions")),
		Clicks:      cellCount(cellAt(row, h, "clicks")),
		MediaType:   cellAt(row, h, "media_type").Text,
	}

	// Company schema itemizes the breakdown; the total is always derived.
	post.EngagementTotal = post.Reactions + post.Comments + post.Shares

	rate := 0.0
	if post.Impressions > 0 {
		rate = roundRate(float64(post.EngagementTotal) / float64(post.Impressions))
	}
	post.EngagementRate = &rate

	if ctr := cellRate(cellAt(row, h, "ctr")); ctr != nil {
		post.CTR = ctr
	} else if post.Impressions > 0 {
		computed := roundRate(float64(post.Clicks) / float64(post.Impressions))
		post.CTR = &computed
	} else {
		zero := 0.0
		post.CTR = &zero
	}

	if views := cellAt(row, h, "video_views"); !views.IsEmpty() {
		v := cellCount(views)
		post.VideoViews = &v
	}

	return post, nil
}

func (n *Normalizer) normalizePersonal(wb *workbook.Workbook, data *ImportData) {
	if sheet, h := n.findTopPostsSheet(wb); sheet != nil {
		n.parseTopPosts(sheet, h, data)
	}
	if sheet, h := n.findDailySheet(wb); sheet != nil {
		n.parseDailySeries(sheet, h, data)
	}
	if sheet, h := n.findFollowersSheet(wb); sheet != nil {
		n.parseFollowers(sheet, h, data)
	}
	if sheet := n.findDiscoverySheet(wb); sheet != nil {
		data.Discovery = n.parseDiscovery(sheet)
	}
}

func (n *Normalizer) parseTopPosts(sheet *workbook.Sheet, h *header, data *ImportData) {
	parsed := 0
	for rowIdx := h.firstRow; rowIdx < len(sheet.Rows) && parsed < topPostsCap; rowIdx++ {
		row := sheet.Rows[rowIdx]
		if rowEmpty(row) {
			continue
		}

		permalink, err := parsePermalink(cellAt(row, h, "post_url"))
		if err != nil {
			data.Warnings = append(data.Warnings,
				fmt.Sprintf("%s row %d skipped: %v", sheet.Name, rowIdx+1, err))
			continue
		}

		postedAt, err := parseDate(cellAt(row, h, "date"))
		if err != nil {
			data.Warnings = append(data.Warnings,
				fmt.Sprintf("%s row %d skipped: invalid date: %v", sheet.Name, rowIdx+1, err))
			continue
		}

		// Personal exports carry only the aggregate figure; the
		// reaction/comment/share breakdown does not exist.
		post := ParsedPost{
			Permalink:       permalink,
			Content:         cellAt(row, h, "content").Text,
			PostedAt:        postedAt,
			EngagementTotal: cellCount(cellAt(row, h, "engagements")),
			Impressions:     cellCount(cellAt(row, h, "impressions")),
		}
		data.Posts = append(data.Posts, post)
		parsed++
	}
}

func (n *Normalizer) parseDailySeries(sheet *workbook.Sheet, h *header, data *ImportData) {
	for rowIdx := h.firstRow; rowIdx < len(sheet.Rows); rowIdx++ {
		row := sheet.Rows[rowIdx]
		if rowEmpty(row) {
			continue
		}

		day, err := parseDate(cellAt(row, h, "date"))
		if err != nil {
			data.Warnings = append(data.Warnings,
				fmt.Sprintf("%s row %d skipped: invalid date: %v", sheet.Name, rowIdx+1, err))
			continue
		}

		data.Daily = append(data.Daily, DailyEngagementPoint{
			Date:        day.Format("2006-01-02"),
			Impressions: cellCount(cellAt(row, h, "impressions")),
			Engagements: cellCount(cellAt(row, h, "engagements")),
		})
	}
}

func (n *Normalizer) parseFollowers(sheet *workbook.Sheet, h *header, data *ImportData) {
	for rowIdx := h.firstRow; rowIdx < len(sheet.Rows); rowIdx++ {
		row := sheet.Rows[rowIdx]
		if rowEmpty(row) {
			continue
		}

		day, err := parseDate(cellAt(row, h, "date"))
		if err != nil {
			data.Warnings = append(data.Warnings,
				fmt.Sprintf("%s row %d skipped: invalid date: %v", sheet.Name, rowIdx+1, err))
			continue
		}

		data.Followers = append(data.Followers, FollowerPoint{
			Date:         day.Format("2006-01-02"),
			NewFollowers: cellCount(cellAt(row, h, "new_followers")),
		})
	}
}

// parseDiscovery reads the label/value rollup sheet. Values are carried
// through unmodified for display.
func (n *Normalizer) parseDiscovery(sheet *workbook.Sheet) *DiscoverySummary {
	summary := &DiscoverySummary{}
	found := false

	for _, row := range sheet.Rows {
		if len(row) == 0 || row[0].IsEmpty() {
			continue
		}
		field := n.aliases.Resolve(row[0].Text)
		if field == "" {
			continue
		}

		value := 0
		for _, cell := range row[1:] {
			if !cell.IsEmpty() {
				value = cellCount(cell)
				break
			}
		}

		switch field {
		case "search_appearances":
			summary.SearchAppearances = value
			found = true
		case "profile_views":
			summary.ProfileViews = value
			found = true
		case "members_reached":
			summary.MembersReached = value
			found = true
		}
	}

	if !found {
		return nil
	}
	return summary
}

func cellAt(row []workbook.Cell, h *header, field string) workbook.Cell {
	idx, ok := h.columns[field]
	if !ok || idx >= len(row) {
		return workbook.Cell{Kind: workbook.CellEmpty}
	}
	return row[idx]
}

func rowEmpty(row []workbook.Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}

func parsePermalink(cell workbook.Cell) (string, error) {
	raw := strings.TrimSpace(cell.Text)
	if raw == "" {
		return "", fmt.Errorf("missing post URL")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid post URL %q", raw)
	}

	return u.String(), nil
}

// excelEpoch is the serial-date origin used by spreadsheet formats.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// parseDate interprets a cell as a calendar date at day granularity.
func parseDate(cell workbook.Cell) (time.Time, error) {
	switch cell.Kind {
	case workbook.CellDate:
		return truncateToDay(cell.Date), nil
	case workbook.CellNumber:
		// Plausible spreadsheet serial range, roughly 1954-2119.
		if cell.Number >= 20000 && cell.Number <= 80000 {
			return excelEpoch.AddDate(0, 0, int(cell.Number)), nil
		}
		return time.Time{}, fmt.Errorf("numeric value %v is not a date", cell.Number)
	case workbook.CellString:
		parsed, err := dateparse.ParseAny(cell.Text)
		if err != nil {
			return time.Time{}, fmt.Errorf("unparsable date %q", cell.Text)
		}
		return truncateToDay(parsed), nil
	default:
		return time.Time{}, fmt.Errorf("missing date")
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// cellCount reads an integer count; blank cells are zero.
func cellCount(cell workbook.Cell) int {
	switch cell.Kind {
	case workbook.CellNumber:
		return int(math.Round(cell.Number))
	case workbook.CellString:
		cleaned := strings.NewReplacer(",", "", " ", "", "%", "").Replace(cell.Text)
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int(math.Round(n))
		}
	}
	return 0
}

// cellRate reads an optional percentage; blank cells are "not available",
// which is distinct from zero.
func cellRate(cell workbook.Cell) *float64 {
	switch cell.Kind {
	case workbook.CellNumber:
		v := cell.Number
		return &v
	case workbook.CellString:
		cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cell.Text), "%"))
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return &v
		}
	}
	return nil
}

// roundRate converts a ratio to a two-decimal percentage.
func roundRate(ratio float64) float64 {
	return math.Round(ratio*10000) / 100
}
