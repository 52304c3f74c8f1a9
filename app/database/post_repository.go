package database

import (
	"database/sql"
	"fmt"
	"time"
)

type SQLPostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

const postColumns = `
	id, page_id, user_id, permalink, content, posted_at,
	reactions, comments, shares, engagement_total, impressions, clicks,
	ctr, engagement_rate, media_type, video_views, created_at, updated_at`

func (r *SQLPostRepository) GetPostByPermalink(userID, permalink string) (*Post, error) {
	row := r.db.QueryRow(`
		SELECT `+postColumns+`
		FROM posts
		WHERE user_id = ? AND permalink = ?
	`, userID, permalink)

	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by permalink: %w", err)
	}

	return post, nil
}

func (r *SQLPostRepository) InsertPost(post Post) error {
	_, err := r.db.Exec(`
		INSERT INTO posts (
			id, page_id, user_id, permalink, content, posted_at,
			reactions, comments, shares, engagement_total, impressions, clicks,
			ctr, engagement_rate, media_type, video_views
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.PageID, post.UserID, post.Permalink, post.Content, post.PostedAt,
		post.Reactions, post.Comments, post.Shares, post.EngagementTotal,
		post.Impressions, post.Clicks, nullFloat(post.CTR), nullFloat(post.EngagementRate),
		post.MediaType, nullInt(post.VideoViews))

	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// UpdatePost refreshes the mutable fields of an existing post. The
// generated identifier and created_at are never touched.
func (r *SQLPostRepository) UpdatePost(post Post) error {
	_, err := r.db.Exec(`
		UPDATE posts
		SET content = ?, posted_at = ?, reactions = ?, comments = ?, shares = ?,
		    engagement_total = ?, impressions = ?, clicks = ?, ctr = ?,
		    engagement_rate = ?, media_type = ?, video_views = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, post.Content, post.PostedAt, post.Reactions, post.Comments, post.Shares,
		post.EngagementTotal, post.Impressions, post.Clicks, nullFloat(post.CTR),
		nullFloat(post.EngagementRate), post.MediaType, nullInt(post.VideoViews),
		post.ID)

	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	return nil
}

func (r *SQLPostRepository) GetPosts(pageID string, from, to time.Time) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE page_id = ?`
	args := []interface{}{pageID}

	if !from.IsZero() {
		query += ` AND posted_at >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND posted_at <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY posted_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post rows: %w", err)
	}

	return posts, nil
}

func (r *SQLPostRepository) GetPostCount(pageID string) (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM posts WHERE page_id = ?", pageID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get post count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*Post, error) {
	var post Post
	var ctr, engagementRate sql.NullFloat64
	var videoViews sql.NullInt64

	err := row.Scan(
		&post.ID, &post.PageID, &post.UserID, &post.Permalink, &post.Content,
		&post.PostedAt, &post.Reactions, &post.Comments, &post.Shares,
		&post.EngagementTotal, &post.Impressions, &post.Clicks,
		&ctr, &engagementRate, &post.MediaType, &videoViews,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if ctr.Valid {
		post.CTR = &ctr.Float64
	}
	if engagementRate.Valid {
		post.EngagementRate = &engagementRate.Float64
	}
	if videoViews.Valid {
		v := int(videoViews.Int64)
		post.VideoViews = &v
	}

	return &post, nil
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
