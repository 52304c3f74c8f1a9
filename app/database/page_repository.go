package database

import (
	"database/sql"
	"fmt"
)

type SQLPageRepository struct {
	db *DB
}

func NewPageRepository(db *DB) *SQLPageRepository {
	return &SQLPageRepository{db: db}
}

func (r *SQLPageRepository) GetPageByUser(userID string) (*Page, error) {
	var page Page
	var isPlaceholder int
	err := r.db.QueryRow(`
		SELECT id, user_id, name, external_url, is_placeholder, export_type,
		       created_at, updated_at
		FROM pages
		WHERE user_id = ?
	`, userID).Scan(
		&page.ID, &page.UserID, &page.Name, &page.ExternalURL,
		&isPlaceholder, &page.ExportType, &page.CreatedAt, &page.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page by user: %w", err)
	}

	page.IsPlaceholder = isPlaceholder != 0
	return &page, nil
}

func (r *SQLPageRepository) CreatePage(page Page) error {
	isPlaceholder := 0
	if page.IsPlaceholder {
		isPlaceholder = 1
	}

	_, err := r.db.Exec(`
		INSERT INTO pages (id, user_id, name, external_url, is_placeholder, export_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, page.ID, page.UserID, page.Name, page.ExternalURL, isPlaceholder, page.ExportType)

	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	return nil
}

func (r *SQLPageRepository) UpdatePageExportType(pageID string, exportType string) error {
	_, err := r.db.Exec(`
		UPDATE pages
		SET export_type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, exportType, pageID)

	if err != nil {
		return fmt.Errorf("failed to update page export type: %w", err)
	}

	return nil
}
