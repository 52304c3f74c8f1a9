package database

import (
	"time"
)

// Page is the owning company/profile record for imported analytics. A
// placeholder page is created on first import when the user never
// connected a real page URL.
type Page struct {
	ID            string // Database UUID
	UserID        string
	Name          string
	ExternalURL   string
	IsPlaceholder bool
	ExportType    string // export schema seen on the most recent import
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Post is the persisted superset of a parsed post. The (user_id, permalink)
// pair is the idempotency key: re-importing the same export updates the
// mutable fields in place instead of duplicating the row.
type Post struct {
	ID              string    `json:"id"` // Database UUID, stable across re-imports
	PageID          string    `json:"page_id"`
	UserID          string    `json:"-"`
	Permalink       string    `json:"permalink"`
	Content         string    `json:"content"`
	PostedAt        time.Time `json:"posted_at"`
	Reactions       int       `json:"reactions"`
	Comments        int       `json:"comments"`
	Shares          int       `json:"shares"`
	EngagementTotal int       `json:"engagement_total"`
	Impressions     int       `json:"impressions"`
	Clicks          int       `json:"clicks"`
	CTR             *float64  `json:"ctr,omitempty"`
	EngagementRate  *float64  `json:"engagement_rate,omitempty"`
	MediaType       string    `json:"media_type,omitempty"`
	VideoViews      *int      `json:"video_views,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DailyStat is one per-date row merging the daily engagement series and
// follower growth. Date is an ISO calendar date (YYYY-MM-DD).
type DailyStat struct {
	PageID       string
	Date         string
	Impressions  int
	Engagements  int
	NewFollowers int
}

type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the audit record for one import invocation. Write-once: it is
// never mutated after the import finishes.
type Run struct {
	ID           string
	UserID       string
	PageID       string
	FileName     string
	Status       RunStatus
	PostsFound   int
	PostsNew     int
	PostsUpdated int
	ErrorsCount  int
	Error        string
	StartedAt    time.Time
	CompletedAt  *time.Time
}
