package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type galleryContentService interface {
	ListAllForAdmin(ctx context.Context, typeSlug string) ([]models.ContentRecord, error)
	Create(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentRecord, error)
	Update(ctx context.Context, id int64, req dto.UpdateContentRequest) (*models.ContentRecord, error)
	Delete(ctx context.Context, id int64) error
}

type galleryPublicRepository interface {
	ListPublished(ctx context.Context, typeSlug string) ([]models.ContentRecord, error)
}

// GalleryService exposes gallery rows through the content workflows pinned
// to the gallery type.
type GalleryService struct {
	content  galleryContentService
	repo     galleryPublicRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewGalleryService constructs the gallery facade.
func NewGalleryService(content galleryContentService, repo galleryPublicRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *GalleryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GalleryService{content: content, repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ListForAdmin returns every gallery row, most recently updated first.
func (s *GalleryService) ListForAdmin(ctx context.Context) ([]dto.GalleryAdminItem, error) {
	records, err := s.content.ListAllForAdmin(ctx, models.ContentTypeGallery)
	if err != nil {
		return nil, err
	}
	items := make([]dto.GalleryAdminItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.GalleryAdminItem{
			ID:           record.ID,
			Title:        record.Title,
			Status:       record.Status,
			Department:   record.Summary,
			ActivityDate: dateOnly(record.PublishedAt),
			ImageURLs:    s.imageURLs(record),
			UpdatedAt:    record.UpdatedAt,
		})
	}
	return items, nil
}

// ListPublic returns published gallery rows, latest activity first.
func (s *GalleryService) ListPublic(ctx context.Context) ([]dto.GalleryPublicItem, error) {
	var cached []dto.GalleryPublicItem
	if s.cache.Get(ctx, cacheKeyGalleryPublic, &cached) {
		return cached, nil
	}
	records, err := s.repo.ListPublished(ctx, models.ContentTypeGallery)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list gallery")
	}
	items := make([]dto.GalleryPublicItem, 0, len(records))
	for _, record := range records {
		items = append(items, dto.GalleryPublicItem{
			ID:           record.ID,
			Title:        record.Title,
			Department:   record.Summary,
			ActivityDate: dateOnly(record.PublishedAt),
			ImageURLs:    s.imageURLs(record),
		})
	}
	s.cache.Set(ctx, cacheKeyGalleryPublic, items, s.cacheTTL)
	return items, nil
}

// Create stores a new gallery item. Title and at least one image are required.
func (s *GalleryService) Create(ctx context.Context, req dto.GalleryRequest, actor *models.JWTClaims) (*models.ContentRecord, error) {
	if strings.TrimSpace(req.Title) == "" || req.Body == nil || len(req.Body.ImageURLs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and at least one image are required")
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode gallery body")
	}
	return s.content.Create(ctx, dto.CreateContentRequest{
		Type:        models.ContentTypeGallery,
		Title:       req.Title,
		Summary:     req.Department,
		Body:        body,
		Status:      req.Status,
		PublishedAt: req.ActivityDate,
	}, actor)
}

// Update replaces a gallery item. Title and body are required.
func (s *GalleryService) Update(ctx context.Context, id int64, req dto.GalleryRequest) (*models.ContentRecord, error) {
	if strings.TrimSpace(req.Title) == "" || req.Body == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and body are required")
	}
	body, err := json.Marshal(req.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode gallery body")
	}
	return s.content.Update(ctx, id, dto.UpdateContentRequest{
		Title:       req.Title,
		Summary:     req.Department,
		Body:        body,
		Status:      req.Status,
		PublishedAt: req.ActivityDate,
	})
}

// Delete removes a gallery item.
func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	return s.content.Delete(ctx, id)
}

func (s *GalleryService) imageURLs(record models.ContentRecord) []string {
	var body models.GalleryBody
	if len(record.Body) > 0 {
		if err := json.Unmarshal(record.Body, &body); err != nil {
			s.logger.Warn("skip malformed gallery body", zap.Int64("content_id", record.ID), zap.Error(err))
		}
	}
	return nonNilStrings(body.ImageURLs)
}
