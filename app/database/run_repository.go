package database

import (
	"database/sql"
	"fmt"
)

type SQLRunRepository struct {
	db *DB
}

func NewRunRepository(db *DB) *SQLRunRepository {
	return &SQLRunRepository{db: db}
}

func (r *SQLRunRepository) InsertRun(run Run) error {
	_, err := r.db.Exec(`
		INSERT INTO scrape_runs (
			id, user_id, page_id, file_name, status,
			posts_found, posts_new, posts_updated, errors_count, error,
			started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.UserID, run.PageID, run.FileName, string(run.Status),
		run.PostsFound, run.PostsNew, run.PostsUpdated, run.ErrorsCount, run.Error,
		run.StartedAt, run.CompletedAt)

	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

const runColumns = `
	id, user_id, page_id, file_name, status,
	posts_found, posts_new, posts_updated, errors_count, error,
	started_at, completed_at`

func (r *SQLRunRepository) GetLatestRun(userID string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT `+runColumns+`
		FROM scrape_runs
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, userID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return run, nil
}

func (r *SQLRunRepository) GetRuns(userID string, limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT `+runColumns+`
		FROM scrape_runs
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}

	return runs, nil
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var status string

	err := row.Scan(
		&run.ID, &run.UserID, &run.PageID, &run.FileName, &status,
		&run.PostsFound, &run.PostsNew, &run.PostsUpdated, &run.ErrorsCount,
		&run.Error, &run.StartedAt, &run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	run.Status = RunStatus(status)
	return &run, nil
}
