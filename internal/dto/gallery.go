package dto

import (
	"time"

	"github.com/Nurdhuha/website-ukim/internal/models"
)

// GalleryRequest is the payload of the dedicated gallery endpoints.
type GalleryRequest struct {
	Title        string               `json:"title" validate:"max=255"`
	Status       models.ContentStatus `json:"status" validate:"omitempty,contentstatus"`
	Department   *string              `json:"department"`
	ActivityDate *string              `json:"activityDate"`
	Body         *models.GalleryBody  `json:"body"`
}

// GalleryAdminItem is a gallery row as listed in the admin view.
type GalleryAdminItem struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Status       models.ContentStatus `json:"status"`
	Department   *string              `json:"department"`
	ActivityDate *string              `json:"activityDate"`
	ImageURLs    []string             `json:"imageUrls"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// GalleryPublicItem is a published gallery row.
type GalleryPublicItem struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Department   *string  `json:"department"`
	ActivityDate *string  `json:"activityDate"`
	ImageURLs    []string `json:"imageUrls"`
}
