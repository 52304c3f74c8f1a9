package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/postpulse/analytics-engine/app/database"
	"github.com/postpulse/analytics-engine/app/schema"
	"github.com/postpulse/analytics-engine/app/workbook"
)

// dailyBatchSize caps the number of rows per daily-stat upsert call to
// respect storage-layer batch limits.
const dailyBatchSize = 100

// Importer runs the full pipeline for one uploaded file: decode,
// normalize, reconcile against stored posts and persist. It is the sole
// writer of posts, daily stats and run records.
type Importer struct {
	normalizer *schema.Normalizer
	pages      database.PageRepository
	posts      database.PostRepository
	daily      database.DailyStatRepository
	runs       database.RunRepository
}

func New(normalizer *schema.Normalizer, pages database.PageRepository,
	posts database.PostRepository, daily database.DailyStatRepository,
	runs database.RunRepository) *Importer {
	return &Importer{
		normalizer: normalizer,
		pages:      pages,
		posts:      posts,
		daily:      daily,
		runs:       runs,
	}
}

// Summary reports the outcome of one import invocation.
type Summary struct {
	RunID        string
	ExportType   schema.ExportType
	PostsFound   int
	PostsNew     int
	PostsUpdated int
	DailyRows    int
	ErrorsCount  int
	Warnings     []string
	Discovery    *schema.DiscoverySummary
	StartedAt    time.Time
	CompletedAt  time.Time
}

// Run imports one file for the given user. Decode and normalization
// failures abort before any write and never produce a run record;
// per-row persistence failures are logged and counted instead.
func (i *Importer) Run(ctx context.Context, userID, fileName string, data []byte) (*Summary, error) {
	startedAt := time.Now().UTC()

	wb, err := workbook.Read(data, fileName)
	if err != nil {
		return nil, err
	}

	parsed, err := i.normalizer.Run(wb)
	if err != nil {
		return nil, err
	}

	page, err := i.ensurePage(userID, parsed.ExportType)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare page record: %w", err)
	}

	summary := &Summary{
		ExportType: parsed.ExportType,
		PostsFound: len(parsed.Posts),
		Warnings:   parsed.Warnings,
		Discovery:  parsed.Discovery,
		StartedAt:  startedAt,
	}

	i.reconcilePosts(ctx, page, parsed.Posts, summary)
	i.reconcileDaily(ctx, page, parsed.Daily, parsed.Followers, summary)

	status := database.RunStatusCompleted
	var runErr string
	processed := summary.PostsNew + summary.PostsUpdated
	if processed == 0 && summary.PostsFound > 0 {
		status = database.RunStatusFailed
		runErr = "no posts could be persisted"
	}

	completedAt := time.Now().UTC()
	summary.CompletedAt = completedAt
	summary.RunID = uuid.NewString()

	run := database.Run{
		ID:           summary.RunID,
		UserID:       userID,
		PageID:       page.ID,
		FileName:     fileName,
		Status:       status,
		PostsFound:   summary.PostsFound,
		PostsNew:     summary.PostsNew,
		PostsUpdated: summary.PostsUpdated,
		ErrorsCount:  summary.ErrorsCount + len(parsed.Warnings),
		Error:        runErr,
		StartedAt:    startedAt,
		CompletedAt:  &completedAt,
	}
	if err := i.runs.InsertRun(run); err != nil {
		slog.Error("Failed to record import run", "user", userID, "error", err)
	}

	slog.Info("Import completed",
		"user", userID,
		"file", fileName,
		"type", parsed.ExportType,
		"found", summary.PostsFound,
		"new", summary.PostsNew,
		"updated", summary.PostsUpdated,
		"daily_rows", summary.DailyRows,
		"errors", summary.ErrorsCount,
		"duration", completedAt.Sub(startedAt))

	if status == database.RunStatusFailed {
		return summary, fmt.Errorf("import failed: %s", runErr)
	}

	return summary, nil
}

// ensurePage returns the user's page record, creating a placeholder one on
// first import. Imports never require a live external page URL.
func (i *Importer) ensurePage(userID string, exportType schema.ExportType) (*database.Page, error) {
	page, err := i.pages.GetPageByUser(userID)
	if err != nil {
		return nil, err
	}

	if page == nil {
		page = &database.Page{
			ID:            uuid.NewString(),
			UserID:        userID,
			Name:          "Imported analytics",
			IsPlaceholder: true,
			ExportType:    string(exportType),
		}
		if err := i.pages.CreatePage(*page); err != nil {
			return nil, err
		}
		return page, nil
	}

	if page.ExportType != string(exportType) {
		if err := i.pages.UpdatePageExportType(page.ID, string(exportType)); err != nil {
			return nil, err
		}
		page.ExportType = string(exportType)
	}

	return page, nil
}

// reconcilePosts writes posts sequentially, keyed by (user, permalink).
// Sequential writes keep the new/updated counts accurate and avoid
// duplicate-insert races on the same permalink within a single import.
func (i *Importer) reconcilePosts(ctx context.Context, page *database.Page,
	posts []schema.ParsedPost, summary *Summary) {
	for _, parsed := range posts {
		select {
		case <-ctx.Done():
			return
		default:
		}

		existing, err := i.posts.GetPostByPermalink(page.UserID, parsed.Permalink)
		if err != nil {
			slog.Error("Post lookup failed", "permalink", parsed.Permalink, "error", err)
			summary.ErrorsCount++
			continue
		}

		if existing == nil {
			post := database.Post{
				ID:     uuid.NewString(),
				PageID: page.ID,
				UserID: page.UserID,
			}
			applyParsed(&post, parsed)
			if err := i.posts.InsertPost(post); err != nil {
				slog.Error("Post insert failed", "permalink", parsed.Permalink, "error", err)
				summary.ErrorsCount++
				continue
			}
			summary.PostsNew++
		} else {
			applyParsed(existing, parsed)
			if err := i.posts.UpdatePost(*existing); err != nil {
				slog.Error("Post update failed", "permalink", parsed.Permalink, "error", err)
				summary.ErrorsCount++
				continue
			}
			summary.PostsUpdated++
		}
	}
}

// reconcileDaily merges engagement and follower points by calendar date
// into single rows and upserts them in bounded batches. Batches are
// independent; a failed batch is logged and does not abort the rest.
func (i *Importer) reconcileDaily(ctx context.Context, page *database.Page,
	daily []schema.DailyEngagementPoint, followers []schema.FollowerPoint,
	summary *Summary) {
	merged := mergeByDate(page.ID, daily, followers)
	if len(merged) == 0 {
		return
	}

	for start := 0; start < len(merged); start += dailyBatchSize {
		select {
		case <-ctx.Done():
			return
		default:
		}

		end := start + dailyBatchSize
		if end > len(merged) {
			end = len(merged)
		}

		if err := i.daily.UpsertDailyStats(merged[start:end]); err != nil {
			slog.Error("Daily stats batch failed", "page", page.ID,
				"rows", end-start, "error", err)
			summary.ErrorsCount++
			continue
		}
		summary.DailyRows += end - start
	}
}

func mergeByDate(pageID string, daily []schema.DailyEngagementPoint,
	followers []schema.FollowerPoint) []database.DailyStat {
	byDate := make(map[string]*database.DailyStat)

	for _, point := range daily {
		stat := statFor(byDate, pageID, point.Date)
		stat.Impressions = point.Impressions
		stat.Engagements = point.Engagements
	}
	for _, point := range followers {
		stat := statFor(byDate, pageID, point.Date)
		stat.NewFollowers = point.NewFollowers
	}

	merged := make([]database.DailyStat, 0, len(byDate))
	for _, stat := range byDate {
		merged = append(merged, *stat)
	}
	sort.Slice(merged, func(a, b int) bool { return merged[a].Date < merged[b].Date })

	return merged
}

func statFor(byDate map[string]*database.DailyStat, pageID, date string) *database.DailyStat {
	if stat, ok := byDate[date]; ok {
		return stat
	}
	stat := &database.DailyStat{PageID: pageID, Date: date}
	byDate[date] = stat
	return stat
}

func applyParsed(post *database.Post, parsed schema.ParsedPost) {
	post.Permalink = parsed.Permalink
	post.Content = parsed.Content
	post.PostedAt = parsed.PostedAt
	post.Reactions = parsed.Reactions
	post.Comments = parsed.Comments
	post.Shares = parsed.Shares
	post.EngagementTotal = parsed.EngagementTotal
	post.Impressions = parsed.Impressions
	post.Clicks = parsed.Clicks
	post.CTR = parsed.CTR
	post.EngagementRate = parsed.EngagementRate
	post.MediaType = parsed.MediaType
	post.VideoViews = parsed.VideoViews
}
