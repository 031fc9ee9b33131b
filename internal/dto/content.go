package dto

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/Nurdhuha/website-ukim/internal/models"
)

// CreateContentRequest is the admin payload for a new content row.
type CreateContentRequest struct {
	Type        string               `json:"type"`
	Title       string               `json:"title" validate:"max=255"`
	Slug        *string              `json:"slug" validate:"omitempty,max=255"`
	Summary     *string              `json:"summary"`
	Body        json.RawMessage      `json:"body" swaggertype:"object"`
	Status      models.ContentStatus `json:"status" validate:"omitempty,contentstatus"`
	PublishedAt *string              `json:"published_at"`
}

// UpdateContentRequest fully replaces the mutable fields of a content row.
type UpdateContentRequest struct {
	Title       string               `json:"title" validate:"max=255"`
	Slug        *string              `json:"slug" validate:"omitempty,max=255"`
	Summary     *string              `json:"summary"`
	Body        json.RawMessage      `json:"body" swaggertype:"object"`
	Status      models.ContentStatus `json:"status" validate:"omitempty,contentstatus"`
	PublishedAt *string              `json:"published_at"`
}

// PublicGalleryItem is the public shape of a gallery row.
type PublicGalleryItem struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	ImageURLs    []string `json:"imageUrls"`
	Department   *string  `json:"department"`
	ActivityDate *string  `json:"activityDate"`
	Year         *int     `json:"year"`
}

// PublicAchievement is the public shape of an achievement row.
type PublicAchievement struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl"`
	Date        *time.Time `json:"date"`
}

// PublicDocument carries the fields shared by announcement, academic and article rows.
type PublicDocument struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Slug            *string    `json:"slug"`
	Summary         *string    `json:"summary"`
	ContentTypeName string     `json:"content_type_name"`
	Date            *time.Time `json:"date"`
	AuthorUsername  *string    `json:"author_username"`
}

// PublicAnnouncement is the public shape of a pengumuman row.
type PublicAnnouncement struct {
	PublicDocument
	ImageURL *string `json:"imageUrl"`
	Category *string `json:"category"`
}

// PublicAcademic is the public shape of an akademik row.
type PublicAcademic struct {
	PublicDocument
	ContentFileURL *string `json:"contentFileUrl"`
}

// PublicArticle is the public shape of an artikel row. ContentHTML is the
// sanitized rendering of the Markdown in Content.
type PublicArticle struct {
	PublicDocument
	ImageURL    *string `json:"imageUrl"`
	Category    *string `json:"category"`
	Content     *string `json:"content"`
	ContentHTML string  `json:"contentHtml"`
}

// PublicContent is the generic public shape for types without a dedicated projection.
type PublicContent struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	Slug            *string              `json:"slug"`
	Summary         *string              `json:"summary"`
	Body            types.JSONText       `json:"body" swaggertype:"object"`
	Status          models.ContentStatus `json:"status"`
	PublishedAt     *time.Time           `json:"published_at"`
	ContentTypeName string               `json:"content_type_name"`
	AuthorUsername  *string              `json:"author_username"`
}
