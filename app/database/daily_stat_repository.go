package database

import (
	"fmt"
	"strings"
	"time"
)

type SQLDailyStatRepository struct {
	db *DB
}

func NewDailyStatRepository(db *DB) *SQLDailyStatRepository {
	return &SQLDailyStatRepository{db: db}
}

// UpsertDailyStats writes one batch of per-date rows, keyed on
// (page_id, date). Callers are responsible for batch sizing.
func (r *SQLDailyStatRepository) UpsertDailyStats(stats []DailyStat) error {
	if len(stats) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(stats))
	args := make([]interface{}, 0, len(stats)*5)
	for _, stat := range stats {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?)")
		args = append(args, stat.PageID, stat.Date, stat.Impressions,
			stat.Engagements, stat.NewFollowers)
	}

	query := `
		INSERT INTO daily_stats (page_id, date, impressions, engagements, new_followers)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (page_id, date) DO UPDATE SET
			impressions = excluded.impressions,
			engagements = excluded.engagements,
			new_followers = excluded.new_followers
	`

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}

	return nil
}

func (r *SQLDailyStatRepository) GetDailyStats(pageID string, from, to time.Time) ([]DailyStat, error) {
	query := `
		SELECT page_id, date, impressions, engagements, new_followers
		FROM daily_stats
		WHERE page_id = ?`
	args := []interface{}{pageID}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.Format("2006-01-02"))
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStat
	for rows.Next() {
		var stat DailyStat
		err := rows.Scan(&stat.PageID, &stat.Date, &stat.Impressions,
			&stat.Engagements, &stat.NewFollowers)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stat row: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stat rows: %w", err)
	}

	return stats, nil
}
