package database

import (
	"time"
)

type PageRepository interface {
	GetPageByUser(userID string) (*Page, error)
	CreatePage(page Page) error
	UpdatePageExportType(pageID string, exportType string) error
}

type PostRepository interface {
	GetPostByPermalink(userID, permalink string) (*Post, error)
	InsertPost(post Post) error
	UpdatePost(post Post) error
	GetPosts(pageID string, from, to time.Time) ([]Post, error)
	GetPostCount(pageID string) (int, error)
}

type DailyStatRepository interface {
	UpsertDailyStats(stats []DailyStat) error
	GetDailyStats(pageID string, from, to time.Time) ([]DailyStat, error)
}

type RunRepository interface {
	InsertRun(run Run) error
	GetLatestRun(userID string) (*Run, error)
	GetRuns(userID string, limit int) ([]Run, error)
}
