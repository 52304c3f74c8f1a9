package metrics

import (
	"math"
	"sort"

	"github.com/postpulse/analytics-engine/app/database"
)

// minSampleSize is the floor below which outlier classification is
// skipped: the standard deviation of one or two posts means nothing.
const minSampleSize = 3

type OutlierFlag string

const (
	OutlierNone   OutlierFlag = ""
	OutlierTop    OutlierFlag = "top"
	OutlierBottom OutlierFlag = "bottom"
)

type RankedPost struct {
	Post    database.Post `json:"post"`
	Outlier OutlierFlag   `json:"outlier,omitempty"`
}

type PostPerformance struct {
	Top    []RankedPost `json:"top"`
	Bottom []RankedPost `json:"bottom"`
	Mean   float64      `json:"mean"`
	StdDev float64      `json:"std_dev"`
}

// listSize caps the top/bottom performer lists.
const listSize = 5

// Performance ranks posts by engagement total and flags statistical
// outliers at two population standard deviations from the mean. The flag
// only annotates; membership in the top/bottom lists is rank-based.
//
// With fewer than minSampleSize posts, every post is returned as a top
// performer and nothing is classified bottom: the sample is too small to
// call anything an outlier.
func Performance(posts []database.Post) PostPerformance {
	ranked := make([]RankedPost, 0, len(posts))
	for _, post := range posts {
		ranked = append(ranked, RankedPost{Post: post})
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Post.EngagementTotal > ranked[b].Post.EngagementTotal
	})

	if len(ranked) < minSampleSize {
		return PostPerformance{Top: ranked, Bottom: []RankedPost{}}
	}

	mean, stdDev := engagementDistribution(posts)
	topThreshold := mean + 2*stdDev
	bottomThreshold := mean - 2*stdDev

	for idx := range ranked {
		total := float64(ranked[idx].Post.EngagementTotal)
		switch {
		case total >= topThreshold:
			ranked[idx].Outlier = OutlierTop
		case total <= bottomThreshold:
			ranked[idx].Outlier = OutlierBottom
		}
	}

	top := ranked
	if len(top) > listSize {
		top = top[:listSize]
	}

	bottom := make([]RankedPost, 0, listSize)
	for idx := len(ranked) - 1; idx >= 0 && len(bottom) < listSize; idx-- {
		bottom = append(bottom, ranked[idx])
	}

	return PostPerformance{
		Top:    top,
		Bottom: bottom,
		Mean:   round2(mean),
		StdDev: round2(stdDev),
	}
}

// engagementDistribution returns the mean and population standard
// deviation of per-post engagement totals.
func engagementDistribution(posts []database.Post) (float64, float64) {
	n := float64(len(posts))

	mean := 0.0
	for _, post := range posts {
		mean += float64(post.EngagementTotal)
	}
	mean /= n

	variance := 0.0
	for _, post := range posts {
		d := float64(post.EngagementTotal) - mean
		variance += d * d
	}
	variance /= n

	return mean, math.Sqrt(variance)
}
