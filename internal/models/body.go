package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MaxGalleryImages bounds the number of images a gallery item carries.
const MaxGalleryImages = 3

// ArticleBody is the body of an artikel row. Content holds Markdown.
type ArticleBody struct {
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,mediapath"`
	Content  string `json:"content,omitempty"`
	Category string `json:"category,omitempty" validate:"max=64"`
}

// AnnouncementBody is the body of a pengumuman row.
type AnnouncementBody struct {
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,mediapath"`
	Category string `json:"category,omitempty" validate:"max=64"`
}

// AcademicBody is the body of an akademik row.
type AcademicBody struct {
	ContentFileURL string `json:"contentFileUrl,omitempty" validate:"omitempty,mediapath"`
}

// AchievementBody is the body of an achievement row.
type AchievementBody struct {
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,mediapath"`
}

// GalleryBody is the canonical gallery body.
type GalleryBody struct {
	ImageURLs []string `json:"imageUrls" validate:"min=1,max=3,dive,required,mediapath"`
}

// UnmarshalJSON accepts the legacy single imageUrl shape as a one-element list.
func (g *GalleryBody) UnmarshalJSON(data []byte) error {
	var raw struct {
		ImageURLs []string `json:"imageUrls"`
		ImageURL  string   `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.ImageURLs = raw.ImageURLs
	if len(g.ImageURLs) == 0 && raw.ImageURL != "" {
		g.ImageURLs = []string{raw.ImageURL}
	}
	return nil
}

// DecodeBody parses raw into the typed body registered for typeSlug. Unknown
// slugs decode into a generic JSON object.
func DecodeBody(typeSlug string, raw []byte) (interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if raw[0] != '{' {
		return nil, fmt.Errorf("body must be a JSON object")
	}

	var target interface{}
	switch typeSlug {
	case ContentTypeArticle:
		target = &ArticleBody{}
	case ContentTypeAnnouncement:
		target = &AnnouncementBody{}
	case ContentTypeAcademic:
		target = &AcademicBody{}
	case ContentTypeAchievement:
		target = &AchievementBody{}
	case ContentTypeGallery:
		target = &GalleryBody{}
	default:
		generic := map[string]interface{}{}
		target = &generic
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode %s body: %w", typeSlug, err)
	}
	return target, nil
}
