package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ContentStatus captures the publication state of a content row.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Content type slugs seeded by migration.
const (
	ContentTypeArticle      = "artikel"
	ContentTypeAnnouncement = "pengumuman"
	ContentTypeAcademic     = "akademik"
	ContentTypeAchievement  = "achievement"
	ContentTypeGallery      = "gallery"
	ContentTypePages        = "pages"
)

// ContentType is static reference data keyed by slug.
type ContentType struct {
	ID   int64  `db:"id" json:"id"`
	Slug string `db:"slug" json:"slug"`
	Name string `db:"name" json:"name"`
}

// Content mirrors a row of the content table.
type Content struct {
	ID            int64          `db:"id" json:"id"`
	ContentTypeID int64          `db:"content_type_id" json:"content_type_id"`
	Title         string         `db:"title" json:"title"`
	Slug          *string        `db:"slug" json:"slug"`
	Summary       *string        `db:"summary" json:"summary"`
	Body          types.JSONText `db:"body" json:"body"`
	AuthorID      *int64         `db:"author_id" json:"author_id"`
	Status        ContentStatus  `db:"status" json:"status"`
	PublishedAt   *time.Time     `db:"published_at" json:"published_at"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// ContentRecord is a content row joined with its type and author.
type ContentRecord struct {
	Content
	ContentTypeSlug string  `db:"content_type_slug" json:"content_type_slug"`
	ContentTypeName string  `db:"content_type_name" json:"content_type_name"`
	AuthorUsername  *string `db:"author_username" json:"author_username"`
	Category        *string `db:"category" json:"category"`
}

// IsPublished reports whether the row is visible on the public read path.
func (c Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}
