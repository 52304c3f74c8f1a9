package metrics

import (
	"testing"

	"github.com/postpulse/analytics-engine/app/database"
)

func engagements(ranked []RankedPost) []int {
	totals := make([]int, len(ranked))
	for i, r := range ranked {
		totals[i] = r.Post.EngagementTotal
	}
	return totals
}

func TestPerformance_SmallSample(t *testing.T) {
	posts := []database.Post{
		post("https://example.com/p/1", 10),
		post("https://example.com/p/2", 2),
	}

	perf := Performance(posts)
	if len(perf.Top) != 2 {
		t.Fatalf("Expected both posts in top list, got %d", len(perf.Top))
	}
	if len(perf.Bottom) != 0 {
		t.Errorf("Expected empty bottom list for small sample, got %d", len(perf.Bottom))
	}
	for _, ranked := range perf.Top {
		if ranked.Outlier != OutlierNone {
			t.Errorf("No outlier flags below the sample floor, got %s", ranked.Outlier)
		}
	}
}

func TestPerformance_RankingAndLists(t *testing.T) {
	posts := []database.Post{
		post("https://example.com/p/1", 10),
		post("https://example.com/p/2", 70),
		post("https://example.com/p/3", 30),
		post("https://example.com/p/4", 50),
		post("https://example.com/p/5", 20),
		post("https://example.com/p/6", 60),
		post("https://example.com/p/7", 40),
	}

	perf := Performance(posts)
	if len(perf.Top) != 5 || len(perf.Bottom) != 5 {
		t.Fatalf("Expected 5/5 list sizes, got %d/%d", len(perf.Top), len(perf.Bottom))
	}

	if perf.Top[0].Post.EngagementTotal != 70 || perf.Top[4].Post.EngagementTotal != 30 {
		t.Errorf("Top list out of order: %v", engagements(perf.Top))
	}
	if perf.Bottom[0].Post.EngagementTotal != 10 || perf.Bottom[4].Post.EngagementTotal != 50 {
		t.Errorf("Bottom list out of order: %v", engagements(perf.Bottom))
	}
}

func TestPerformance_HighPostBelowThresholdIsNotFlagged(t *testing.T) {
	// Mean 24, population stddev ~18.4: the threshold sits at ~60.8, so
	// the 50-engagement post ranks first without being an outlier.
	posts := []database.Post{
		post("https://example.com/p/1", 10),
		post("https://example.com/p/2", 50),
		post("https://example.com/p/3", 12),
	}

	perf := Performance(posts)
	if perf.Top[0].Post.EngagementTotal != 50 {
		t.Fatalf("Expected 50-engagement post ranked first, got %d", perf.Top[0].Post.EngagementTotal)
	}
	if perf.Top[0].Outlier != OutlierNone {
		t.Errorf("Expected no outlier flag below two stddevs, got %s", perf.Top[0].Outlier)
	}
	if perf.Mean != 24.0 {
		t.Errorf("Expected mean 24.0, got %v", perf.Mean)
	}
}

func TestPerformance_OutlierFlagged(t *testing.T) {
	// Mean 20.8, population stddev 39.6: threshold is exactly 100, so the
	// spike is flagged while the ordinary posts are not.
	posts := []database.Post{
		post("https://example.com/p/1", 1),
		post("https://example.com/p/2", 1),
		post("https://example.com/p/3", 1),
		post("https://example.com/p/4", 1),
		post("https://example.com/p/5", 100),
	}

	perf := Performance(posts)
	if perf.Top[0].Outlier != OutlierTop {
		t.Errorf("Expected the spike to be flagged top, got %q", perf.Top[0].Outlier)
	}
	for _, ranked := range perf.Top[1:] {
		if ranked.Outlier != OutlierNone {
			t.Errorf("Expected ordinary post unflagged, got %s", ranked.Outlier)
		}
	}
	if perf.StdDev != 39.6 {
		t.Errorf("Expected stddev 39.6, got %v", perf.StdDev)
	}
}

func TestPerformance_Empty(t *testing.T) {
	perf := Performance(nil)
	if len(perf.Top) != 0 || len(perf.Bottom) != 0 {
		t.Errorf("Expected empty lists, got %d/%d", len(perf.Top), len(perf.Bottom))
	}
}
