package metrics

import (
	"sort"
	"time"

	"github.com/postpulse/analytics-engine/app/database"
	"github.com/postpulse/analytics-engine/app/schema"
)

type TrendPoint struct {
	Date        string `json:"date"`
	Reactions   int    `json:"reactions"`
	Comments    int    `json:"comments"`
	Shares      int    `json:"shares"`
	Engagements int    `json:"engagements"`
	Impressions int    `json:"impressions"`
	PostCount   int    `json:"post_count"`
}

// DailyTrend builds the per-day engagement series, ascending by date.
// Personal exports ship a native daily series which passes through
// directly; company exports have none, so posts are bucketed by their
// posted calendar date instead.
func DailyTrend(exportType schema.ExportType, posts []database.Post,
	daily []database.DailyStat) []TrendPoint {
	if exportType == schema.ExportTypePersonal {
		points := make([]TrendPoint, 0, len(daily))
		for _, stat := range daily {
			points = append(points, TrendPoint{
				Date:        stat.Date,
				Engagements: stat.Engagements,
				Impressions: stat.Impressions,
			})
		}
		sort.Slice(points, func(a, b int) bool { return points[a].Date < points[b].Date })
		return points
	}

	byDate := make(map[string]*TrendPoint)
	for _, post := range posts {
		date := post.PostedAt.Format("2006-01-02")
		point, ok := byDate[date]
		if !ok {
			point = &TrendPoint{Date: date}
			byDate[date] = point
		}
		point.Reactions += post.Reactions
		point.Comments += post.Comments
		point.Shares += post.Shares
		point.Engagements += post.EngagementTotal
		point.Impressions += post.Impressions
		point.PostCount++
	}

	points := make([]TrendPoint, 0, len(byDate))
	for _, point := range byDate {
		points = append(points, *point)
	}
	sort.Slice(points, func(a, b int) bool { return points[a].Date < points[b].Date })

	return points
}

type FrequencyPoint struct {
	WeekStart string `json:"week_start"`
	PostCount int    `json:"post_count"`
}

// WeeklyFrequency counts posts per ISO week, keyed by the week's Monday,
// ascending.
func WeeklyFrequency(posts []database.Post) []FrequencyPoint {
	byWeek := make(map[string]int)
	for _, post := range posts {
		byWeek[weekStart(post.PostedAt).Format("2006-01-02")]++
	}

	points := make([]FrequencyPoint, 0, len(byWeek))
	for week, count := range byWeek {
		points = append(points, FrequencyPoint{WeekStart: week, PostCount: count})
	}
	sort.Slice(points, func(a, b int) bool { return points[a].WeekStart < points[b].WeekStart })

	return points
}

// weekStart returns the Monday of the ISO week containing t.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
