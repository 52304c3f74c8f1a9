package importer

import (
	"fmt"
	"time"

	"github.com/postpulse/analytics-engine/app/database"
	"github.com/postpulse/analytics-engine/app/schema"
)

// Snapshot is one immutable read of the stored analytics collection for a
// time window. The metrics engine consumes it as a pure value; only an
// import produces a new one.
type Snapshot struct {
	Page       *database.Page
	ExportType schema.ExportType
	Posts      []database.Post
	DailyStats []database.DailyStat
	LastRun    *database.Run
	From       time.Time
	To         time.Time
}

// LoadSnapshot reads the stored posts, daily rows and last run for the
// user within the window. Zero from/to leave that side of the window open.
func (i *Importer) LoadSnapshot(userID string, from, to time.Time) (*Snapshot, error) {
	page, err := i.pages.GetPageByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	snapshot := &Snapshot{Page: page, From: from, To: to}
	if page == nil {
		return snapshot, nil
	}

	snapshot.ExportType = schema.ExportType(page.ExportType)

	posts, err := i.posts.GetPosts(page.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}
	snapshot.Posts = posts

	stats, err := i.daily.GetDailyStats(page.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}
	snapshot.DailyStats = stats

	lastRun, err := i.runs.GetLatestRun(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	snapshot.LastRun = lastRun

	return snapshot, nil
}
