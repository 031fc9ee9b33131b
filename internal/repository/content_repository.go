package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/Nurdhuha/website-ukim/internal/models"
)

const contentRecordSelect = `SELECT c.id, c.content_type_id, c.title, c.slug, c.summary, c.body, c.author_id, c.status, c.published_at, c.created_at, c.updated_at,
ct.slug AS content_type_slug, ct.name AS content_type_name, u.username AS author_username, c.body->>'category' AS category
FROM content c
JOIN content_types ct ON ct.id = c.content_type_id
LEFT JOIN users u ON u.id = c.author_id`

// ContentRepository persists content rows and resolves content types.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a content repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// FindTypeBySlug resolves a content type. Returns sql.ErrNoRows for unknown slugs.
func (r *ContentRepository) FindTypeBySlug(ctx context.Context, slug string) (*models.ContentType, error) {
	const query = `SELECT id, slug, name FROM content_types WHERE slug = $1`
	var ct models.ContentType
	if err := r.db.GetContext(ctx, &ct, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find content type: %w", err)
	}
	return &ct, nil
}

// ListPublished returns published rows of a type, newest publication first.
func (r *ContentRepository) ListPublished(ctx context.Context, typeSlug string) ([]models.ContentRecord, error) {
	query := contentRecordSelect + `
WHERE ct.slug = $1 AND c.status = 'published'
ORDER BY c.published_at DESC NULLS LAST, c.id DESC`
	records := make([]models.ContentRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, typeSlug); err != nil {
		return nil, fmt.Errorf("list published content: %w", err)
	}
	return records, nil
}

// ListByType returns draft and published rows of a type, most recently updated first.
func (r *ContentRepository) ListByType(ctx context.Context, typeSlug string) ([]models.ContentRecord, error) {
	query := contentRecordSelect + `
WHERE ct.slug = $1
ORDER BY c.updated_at DESC, c.id DESC`
	records := make([]models.ContentRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, typeSlug); err != nil {
		return nil, fmt.Errorf("list content by type: %w", err)
	}
	return records, nil
}

// GetByID fetches a content row with its type and author.
func (r *ContentRepository) GetByID(ctx context.Context, id int64) (*models.ContentRecord, error) {
	query := contentRecordSelect + `
WHERE c.id = $1`
	var record models.ContentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &record, nil
}

// Create inserts a content row attributed to authorUsername and fills the generated columns.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content, authorUsername string) error {
	const query = `INSERT INTO content (content_type_id, title, slug, summary, body, author_id, status, published_at)
VALUES ($1, $2, $3, $4, $5, (SELECT id FROM users WHERE username = $6), $7, $8)
RETURNING id, author_id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		content.ContentTypeID,
		content.Title,
		content.Slug,
		content.Summary,
		content.Body,
		authorUsername,
		content.Status,
		content.PublishedAt,
	)
	if err := row.Scan(&content.ID, &content.AuthorID, &content.CreatedAt, &content.UpdatedAt); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// Update replaces the mutable fields. updated_at always moves forward, even
// for two writes inside the same clock tick. Returns sql.ErrNoRows for unknown ids.
func (r *ContentRepository) Update(ctx context.Context, content *models.Content) error {
	const query = `UPDATE content SET title = $1, slug = $2, summary = $3, body = $4, status = $5, published_at = $6,
updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')
WHERE id = $7
RETURNING updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		content.Title,
		content.Slug,
		content.Summary,
		content.Body,
		content.Status,
		content.PublishedAt,
		content.ID,
	)
	if err := row.Scan(&content.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update content: %w", err)
	}
	return nil
}

// Delete hard-deletes a row. Returns sql.ErrNoRows when nothing was removed.
func (r *ContentRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM content WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete content rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListBodies returns every stored body; used to find uploads still referenced.
func (r *ContentRepository) ListBodies(ctx context.Context) ([]types.JSONText, error) {
	bodies := make([]types.JSONText, 0)
	if err := r.db.SelectContext(ctx, &bodies, "SELECT body FROM content"); err != nil {
		return nil, fmt.Errorf("list content bodies: %w", err)
	}
	return bodies, nil
}
