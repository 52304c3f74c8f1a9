package database

import (
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewConnection(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestPageRepository(t *testing.T) {
	repo := NewPageRepository(testDB(t))

	page, err := repo.GetPageByUser("nobody")
	if err != nil {
		t.Fatalf("GetPageByUser failed: %v", err)
	}
	if page != nil {
		t.Fatalf("Expected nil for unknown user, got %+v", page)
	}

	err = repo.CreatePage(Page{
		ID:            "page-1",
		UserID:        "user-1",
		Name:          "Imported analytics",
		IsPlaceholder: true,
		ExportType:    "company",
	})
	if err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}

	page, err = repo.GetPageByUser("user-1")
	if err != nil {
		t.Fatalf("GetPageByUser failed: %v", err)
	}
	if page == nil || page.ID != "page-1" || !page.IsPlaceholder {
		t.Fatalf("Unexpected page: %+v", page)
	}

	if err := repo.UpdatePageExportType("page-1", "personal"); err != nil {
		t.Fatalf("UpdatePageExportType failed: %v", err)
	}
	page, _ = repo.GetPageByUser("user-1")
	if page.ExportType != "personal" {
		t.Errorf("Expected export type personal, got %s", page.ExportType)
	}
}

func TestPostRepository(t *testing.T) {
	db := testDB(t)
	pages := NewPageRepository(db)
	repo := NewPostRepository(db)

	if err := pages.CreatePage(Page{ID: "page-1", UserID: "user-1"}); err != nil {
		t.Fatalf("CreatePage failed: %v", err)
	}

	ctr := 2.5
	post := Post{
		ID:              "post-1",
		PageID:          "page-1",
		UserID:          "user-1",
		Permalink:       "https://example.com/p/1",
		Content:         "first",
		PostedAt:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Reactions:       5,
		EngagementTotal: 7,
		Impressions:     300,
		CTR:             &ctr,
	}
	if err := repo.InsertPost(post); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	got, err := repo.GetPostByPermalink("user-1", "https://example.com/p/1")
	if err != nil {
		t.Fatalf("GetPostByPermalink failed: %v", err)
	}
	if got == nil || got.ID != "post-1" || got.Content != "first" {
		t.Fatalf("Unexpected post: %+v", got)
	}
	if got.CTR == nil || *got.CTR != 2.5 {
		t.Errorf("Expected CTR 2.5, got %v", got.CTR)
	}
	if got.EngagementRate != nil {
		t.Errorf("Expected nil engagement rate, got %v", *got.EngagementRate)
	}

	if missing, _ := repo.GetPostByPermalink("user-1", "https://example.com/p/x"); missing != nil {
		t.Errorf("Expected nil for unknown permalink, got %+v", missing)
	}

	got.Content = "edited"
	got.Impressions = 500
	if err := repo.UpdatePost(*got); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	updated, _ := repo.GetPostByPermalink("user-1", "https://example.com/p/1")
	if updated.Content != "edited" || updated.Impressions != 500 {
		t.Errorf("Expected in-place update, got %+v", updated)
	}

	second := post
	second.ID = "post-2"
	second.Permalink = "https://example.com/p/2"
	second.PostedAt = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if err := repo.InsertPost(second); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	all, err := repo.GetPosts("page-1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(all))
	}
	if !all[0].PostedAt.Before(all[1].PostedAt) {
		t.Errorf("Expected ascending posted_at order, got %v then %v",
			all[0].PostedAt, all[1].PostedAt)
	}

	windowed, err := repo.GetPosts("page-1",
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	if err != nil {
		t.Fatalf("GetPosts failed: %v", err)
	}
	if len(windowed) != 1 || windowed[0].ID != "post-1" {
		t.Errorf("Expected only the February post in window, got %+v", windowed)
	}

	count, err := repo.GetPostCount("page-1")
	if err != nil {
		t.Fatalf("GetPostCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestPostRepository_PermalinkUnique(t *testing.T) {
	db := testDB(t)
	NewPageRepository(db).CreatePage(Page{ID: "page-1", UserID: "user-1"})
	repo := NewPostRepository(db)

	post := Post{
		ID: "post-1", PageID: "page-1", UserID: "user-1",
		Permalink: "https://example.com/p/1",
		PostedAt:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.InsertPost(post); err != nil {
		t.Fatalf("InsertPost failed: %v", err)
	}

	post.ID = "post-2"
	if err := repo.InsertPost(post); err == nil {
		t.Error("Expected unique constraint violation for duplicate permalink")
	}
}

func TestDailyStatRepository(t *testing.T) {
	db := testDB(t)
	NewPageRepository(db).CreatePage(Page{ID: "page-1", UserID: "user-1"})
	repo := NewDailyStatRepository(db)

	if err := repo.UpsertDailyStats(nil); err != nil {
		t.Fatalf("Empty upsert should be a no-op, got %v", err)
	}

	err := repo.UpsertDailyStats([]DailyStat{
		{PageID: "page-1", Date: "2024-02-01", Impressions: 150, Engagements: 12},
		{PageID: "page-1", Date: "2024-02-02", Impressions: 90, Engagements: 4},
	})
	if err != nil {
		t.Fatalf("UpsertDailyStats failed: %v", err)
	}

	// Re-upserting the same date must update in place, not duplicate.
	err = repo.UpsertDailyStats([]DailyStat{
		{PageID: "page-1", Date: "2024-02-01", Impressions: 200, Engagements: 20, NewFollowers: 3},
	})
	if err != nil {
		t.Fatalf("UpsertDailyStats failed: %v", err)
	}

	stats, err := repo.GetDailyStats("page-1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetDailyStats failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected 2 rows after conflict update, got %d", len(stats))
	}
	if stats[0].Date != "2024-02-01" || stats[0].Impressions != 200 || stats[0].NewFollowers != 3 {
		t.Errorf("Expected updated first row, got %+v", stats[0])
	}

	windowed, err := repo.GetDailyStats("page-1",
		time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), time.Time{})
	if err != nil {
		t.Fatalf("GetDailyStats failed: %v", err)
	}
	if len(windowed) != 1 || windowed[0].Date != "2024-02-02" {
		t.Errorf("Expected only the second day in window, got %+v", windowed)
	}
}

func TestRunRepository(t *testing.T) {
	repo := NewRunRepository(testDB(t))

	if missing, err := repo.GetLatestRun("user-1"); err != nil || missing != nil {
		t.Fatalf("Expected nil latest run, got %+v (err %v)", missing, err)
	}

	first := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	done := second.Add(time.Minute)

	err := repo.InsertRun(Run{
		ID: "run-1", UserID: "user-1", PageID: "page-1",
		FileName: "a.csv", Status: RunStatusFailed,
		Error: "no posts could be persisted", StartedAt: first,
	})
	if err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}
	err = repo.InsertRun(Run{
		ID: "run-2", UserID: "user-1", PageID: "page-1",
		FileName: "b.csv", Status: RunStatusCompleted,
		PostsFound: 3, PostsNew: 3, StartedAt: second, CompletedAt: &done,
	})
	if err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}

	latest, err := repo.GetLatestRun("user-1")
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest == nil || latest.ID != "run-2" || latest.Status != RunStatusCompleted {
		t.Fatalf("Unexpected latest run: %+v", latest)
	}
	if latest.CompletedAt == nil {
		t.Error("Expected completion timestamp to round-trip")
	}

	runs, err := repo.GetRuns("user-1", 1)
	if err != nil {
		t.Fatalf("GetRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-2" {
		t.Errorf("Expected limit to apply with newest first, got %+v", runs)
	}
}
