package schema

import (
	"errors"
	"time"
)

// ErrEmptyImport is returned when normalization recovers no posts at all.
var ErrEmptyImport = errors.New("no posts could be recovered from the file")

type ExportType string

const (
	ExportTypeCompany  ExportType = "company"
	ExportTypePersonal ExportType = "personal"
)

// ParsedPost is the canonical, schema-independent post record.
//
// EngagementTotal is either the sum of Reactions+Comments+Shares (company
// exports) or the aggregate figure supplied by the sheet (personal
// exports), never both.
type ParsedPost struct {
	Permalink       string
	Content         string
	PostedAt        time.Time
	Reactions       int
	Comments        int
	Shares          int
	EngagementTotal int
	Impressions     int
	Clicks          int
	CTR             *float64
	EngagementRate  *float64
	MediaType       string
	VideoViews      *int
}

// DailyEngagementPoint is one day of the continuous series personal
// exports report instead of per-post breakdowns. Date is an ISO calendar
// date (YYYY-MM-DD), no time component.
type DailyEngagementPoint struct {
	Date        string
	Impressions int
	Engagements int
}

type FollowerPoint struct {
	Date         string
	NewFollowers int
}

// DiscoverySummary is carried through for display, never computed.
type DiscoverySummary struct {
	SearchAppearances int
	ProfileViews      int
	MembersReached    int
}

// ImportData is the normalized output of one workbook.
type ImportData struct {
	ExportType ExportType
	Posts      []ParsedPost
	Daily      []DailyEngagementPoint
	Followers  []FollowerPoint
	Discovery  *DiscoverySummary
	Warnings   []string
}
