// Package metrics derives aggregate statistics from the stored post
// collection. Everything here is a pure function of already-loaded data:
// no I/O, no error paths, degrading to zero/empty values instead.
package metrics

import (
	"math"

	"github.com/postpulse/analytics-engine/app/database"
)

type EngagementMetrics struct {
	TotalReactions    int `json:"total_reactions"`
	TotalComments     int `json:"total_comments"`
	TotalShares       int `json:"total_shares"`
	TotalEngagement   int `json:"total_engagement"`
	AvgPerPost        int `json:"avg_per_post"`
	TopPostEngagement int `json:"top_post_engagement"`
	PostCount         int `json:"post_count"`
}

// Engagement sums the engagement figures over the window. Personal exports
// carry no reaction/comment/share breakdown, so those totals stay zero and
// only the aggregate contributes. All fields are zero for an empty window.
func Engagement(posts []database.Post) EngagementMetrics {
	m := EngagementMetrics{PostCount: len(posts)}

	for _, post := range posts {
		m.TotalReactions += post.Reactions
		m.TotalComments += post.Comments
		m.TotalShares += post.Shares
		m.TotalEngagement += post.EngagementTotal
		if post.EngagementTotal > m.TopPostEngagement {
			m.TopPostEngagement = post.EngagementTotal
		}
	}

	if len(posts) > 0 {
		m.AvgPerPost = int(math.Round(float64(m.TotalEngagement) / float64(len(posts))))
	}

	return m
}

type ImpressionMetrics struct {
	TotalImpressions     int     `json:"total_impressions"`
	TotalClicks          int     `json:"total_clicks"`
	AvgCTR               float64 `json:"avg_ctr"`
	AvgEngagementRate    float64 `json:"avg_engagement_rate"`
	PostsWithImpressions int     `json:"posts_with_impressions"`
}

// Impressions aggregates over the subset of posts with impressions > 0.
// Returns nil when that subset is empty so callers can hide the whole
// panel instead of rendering zeros.
//
// AvgCTR is a rate of sums; AvgEngagementRate is a mean of per-post rates.
// The asymmetry is intentional and matches the product's conventions.
func Impressions(posts []database.Post) *ImpressionMetrics {
	m := &ImpressionMetrics{}
	rateSum := 0.0

	for _, post := range posts {
		if post.Impressions <= 0 {
			continue
		}
		m.PostsWithImpressions++
		m.TotalImpressions += post.Impressions
		m.TotalClicks += post.Clicks
		if post.EngagementRate != nil {
			rateSum += *post.EngagementRate
		}
	}

	if m.PostsWithImpressions == 0 {
		return nil
	}

	m.AvgCTR = round2(float64(m.TotalClicks) / float64(m.TotalImpressions) * 100)
	m.AvgEngagementRate = round2(rateSum / float64(m.PostsWithImpressions))

	return m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
