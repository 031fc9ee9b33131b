package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
	"github.com/Nurdhuha/website-ukim/pkg/slug"
)

type contentRepository interface {
	FindTypeBySlug(ctx context.Context, slug string) (*models.ContentType, error)
	ListPublished(ctx context.Context, typeSlug string) ([]models.ContentRecord, error)
	ListByType(ctx context.Context, typeSlug string) ([]models.ContentRecord, error)
	GetByID(ctx context.Context, id int64) (*models.ContentRecord, error)
	Create(ctx context.Context, content *models.Content, authorUsername string) error
	Update(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id int64) error
}

type markdownRenderer interface {
	Render(source string) (string, error)
}

// ContentServiceConfig carries the tunables of the content workflows.
type ContentServiceConfig struct {
	DefaultAuthor string
	CacheTTL      time.Duration
	Metrics       *MetricsService
}

// ContentService implements the public and admin content workflows.
type ContentService struct {
	repo      contentRepository
	renderer  markdownRenderer
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ContentServiceConfig
	now       func() time.Time
}

// NewContentService constructs the service. cache and renderer may be nil.
func NewContentService(repo contentRepository, renderer markdownRenderer, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg ContentServiceConfig) *ContentService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultAuthor == "" {
		cfg.DefaultAuthor = "admin"
	}
	return &ContentService{
		repo:      repo,
		renderer:  renderer,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ListPublished returns the public projection of published rows of typeSlug.
// Unknown slugs produce an empty list.
func (s *ContentService) ListPublished(ctx context.Context, typeSlug string) ([]interface{}, error) {
	typeSlug = strings.TrimSpace(typeSlug)
	key := PublicContentKey(typeSlug)

	var cached []json.RawMessage
	if s.cache.Get(ctx, key, &cached) {
		items := make([]interface{}, len(cached))
		for i := range cached {
			items[i] = cached[i]
		}
		return items, nil
	}

	records, err := s.repo.ListPublished(ctx, typeSlug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}
	items := make([]interface{}, 0, len(records))
	for _, record := range records {
		items = append(items, s.project(typeSlug, record))
	}
	if len(records) == 0 && !s.knownType(ctx, typeSlug) {
		return items, nil
	}
	s.cache.Set(ctx, key, items, s.cfg.CacheTTL)
	return items, nil
}

// knownType keeps arbitrary slugs out of the listing cache.
func (s *ContentService) knownType(ctx context.Context, typeSlug string) bool {
	if typeSlug == "" {
		return false
	}
	if _, err := s.repo.FindTypeBySlug(ctx, typeSlug); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("content type lookup failed", zap.String("type", typeSlug), zap.Error(err))
		}
		return false
	}
	return true
}

// ListAllForAdmin returns draft and published rows of typeSlug.
func (s *ContentService) ListAllForAdmin(ctx context.Context, typeSlug string) ([]models.ContentRecord, error) {
	typeSlug = strings.TrimSpace(typeSlug)
	if typeSlug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content type query parameter is required")
	}
	records, err := s.repo.ListByType(ctx, typeSlug)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")
	}
	return records, nil
}

// Create persists a new content row attributed to actor, or to the default
// author when actor is nil.
func (s *ContentService) Create(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentRecord, error) {
	req.Type = strings.TrimSpace(req.Type)
	req.Title = strings.TrimSpace(req.Title)
	if req.Type == "" || req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type and title are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	contentType, err := s.repo.FindTypeBySlug(ctx, req.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown content type "+req.Type)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve content type")
	}

	body, err := s.prepareBody(contentType.Slug, req.Body)
	if err != nil {
		return nil, err
	}
	publishedAt, err := parseTimestamp(req.PublishedAt)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.ContentStatusDraft
	}
	if status == models.ContentStatusPublished && publishedAt == nil {
		now := s.now().UTC()
		publishedAt = &now
	}

	content := &models.Content{
		ContentTypeID: contentType.ID,
		Title:         req.Title,
		Slug:          resolveSlug(contentType.Slug, req.Slug, req.Title),
		Summary:       trimmedOrNil(req.Summary),
		Body:          body,
		Status:        status,
		PublishedAt:   publishedAt,
	}
	author := s.author(actor)
	if err := s.repo.Create(ctx, content, author); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create content")
	}
	s.cache.InvalidateContentType(ctx, contentType.Slug)
	s.cfg.Metrics.RecordContentWrite(contentType.Slug, "create")

	record := &models.ContentRecord{
		Content:         *content,
		ContentTypeSlug: contentType.Slug,
		ContentTypeName: contentType.Name,
		Category:        bodyCategory(body),
	}
	if content.AuthorID != nil {
		record.AuthorUsername = &author
	}
	return record, nil
}

// Update fully replaces the mutable fields of content id. An omitted status
// keeps the stored one.
func (s *ContentService) Update(ctx context.Context, id int64, req dto.UpdateContentRequest) (*models.ContentRecord, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}

	body, err := s.prepareBody(existing.ContentTypeSlug, req.Body)
	if err != nil {
		return nil, err
	}
	publishedAt, err := parseTimestamp(req.PublishedAt)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = existing.Status
	}
	if status == models.ContentStatusPublished && publishedAt == nil {
		if existing.PublishedAt != nil {
			publishedAt = existing.PublishedAt
		} else {
			now := s.now().UTC()
			publishedAt = &now
		}
	}

	existing.Title = req.Title
	existing.Slug = resolveSlug(existing.ContentTypeSlug, req.Slug, req.Title)
	existing.Summary = trimmedOrNil(req.Summary)
	existing.Body = body
	existing.Status = status
	existing.PublishedAt = publishedAt
	existing.Category = bodyCategory(body)

	if err := s.repo.Update(ctx, &existing.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content")
	}
	s.cache.InvalidateContentType(ctx, existing.ContentTypeSlug)
	s.cfg.Metrics.RecordContentWrite(existing.ContentTypeSlug, "update")
	return existing, nil
}

// Delete hard-deletes content id.
func (s *ContentService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete content")
	}
	s.cache.InvalidateContentType(ctx, existing.ContentTypeSlug)
	s.cfg.Metrics.RecordContentWrite(existing.ContentTypeSlug, "delete")
	return nil
}

func (s *ContentService) author(actor *models.JWTClaims) string {
	if actor != nil && actor.Username != "" {
		return actor.Username
	}
	return s.cfg.DefaultAuthor
}

// prepareBody validates raw against the body schema of typeSlug and returns
// its canonical encoding.
func (s *ContentService) prepareBody(typeSlug string, raw json.RawMessage) (types.JSONText, error) {
	raw, err := normalizeBody(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "body must be a JSON object")
	}
	decoded, err := models.DecodeBody(typeSlug, raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "body does not match the "+typeSlug+" schema")
	}
	if _, generic := decoded.(*map[string]interface{}); !generic {
		if err := s.validator.Struct(decoded); err != nil {
			return nil, validationError(err)
		}
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode body")
	}
	return types.JSONText(canonical), nil
}

// normalizeBody unwraps a body that was sent as a JSON-encoded string.
func normalizeBody(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, `"`) {
		return raw, nil
	}
	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(inner) == "" {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(inner), nil
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func parseTimestamp(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "published_at must be an ISO 8601 timestamp")
}

func resolveSlug(typeSlug string, requested *string, title string) *string {
	if value := trimmedOrNil(requested); value != nil {
		return value
	}
	if !isDocumentType(typeSlug) {
		return nil
	}
	generated := slug.Make(title)
	if generated == "" {
		return nil
	}
	return &generated
}

func isDocumentType(typeSlug string) bool {
	switch typeSlug {
	case models.ContentTypeArticle, models.ContentTypeAnnouncement, models.ContentTypeAcademic, models.ContentTypePages:
		return true
	}
	return false
}

func bodyCategory(body types.JSONText) *string {
	var probe struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Category == "" {
		return nil
	}
	return &probe.Category
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func stringOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func dateOnly(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format("2006-01-02")
	return &formatted
}

func (s *ContentService) project(typeSlug string, record models.ContentRecord) interface{} {
	switch typeSlug {
	case models.ContentTypeGallery:
		var body models.GalleryBody
		s.decodeStoredBody(record, &body)
		item := dto.PublicGalleryItem{
			ID:           record.ID,
			Title:        record.Title,
			ImageURLs:    nonNilStrings(body.ImageURLs),
			Department:   record.Summary,
			ActivityDate: dateOnly(record.PublishedAt),
		}
		if record.PublishedAt != nil {
			year := record.PublishedAt.UTC().Year()
			item.Year = &year
		}
		return item
	case models.ContentTypeAchievement:
		var body models.AchievementBody
		s.decodeStoredBody(record, &body)
		return dto.PublicAchievement{
			ID:          record.ID,
			Title:       record.Title,
			Description: record.Summary,
			ImageURL:    stringOrNil(body.ImageURL),
			Date:        record.PublishedAt,
		}
	case models.ContentTypeAnnouncement:
		var body models.AnnouncementBody
		s.decodeStoredBody(record, &body)
		return dto.PublicAnnouncement{
			PublicDocument: publicDocument(record),
			ImageURL:       stringOrNil(body.ImageURL),
			Category:       stringOrNil(body.Category),
		}
	case models.ContentTypeAcademic:
		var body models.AcademicBody
		s.decodeStoredBody(record, &body)
		return dto.PublicAcademic{
			PublicDocument: publicDocument(record),
			ContentFileURL: stringOrNil(body.ContentFileURL),
		}
	case models.ContentTypeArticle:
		var body models.ArticleBody
		s.decodeStoredBody(record, &body)
		return dto.PublicArticle{
			PublicDocument: publicDocument(record),
			ImageURL:       stringOrNil(body.ImageURL),
			Category:       stringOrNil(body.Category),
			Content:        stringOrNil(body.Content),
			ContentHTML:    s.renderMarkdown(record.ID, body.Content),
		}
	default:
		return dto.PublicContent{
			ID:              record.ID,
			Title:           record.Title,
			Slug:            record.Slug,
			Summary:         record.Summary,
			Body:            record.Body,
			Status:          record.Status,
			PublishedAt:     record.PublishedAt,
			ContentTypeName: record.ContentTypeName,
			AuthorUsername:  record.AuthorUsername,
		}
	}
}

// decodeStoredBody tolerates malformed legacy bodies by leaving dest empty.
func (s *ContentService) decodeStoredBody(record models.ContentRecord, dest interface{}) {
	if len(record.Body) == 0 {
		return
	}
	if err := json.Unmarshal(record.Body, dest); err != nil {
		s.logger.Warn("skip malformed content body", zap.Int64("content_id", record.ID), zap.Error(err))
	}
}

func (s *ContentService) renderMarkdown(id int64, source string) string {
	if s.renderer == nil || source == "" {
		return ""
	}
	html, err := s.renderer.Render(source)
	if err != nil {
		s.logger.Warn("render article markdown", zap.Int64("content_id", id), zap.Error(err))
		return ""
	}
	return html
}

func publicDocument(record models.ContentRecord) dto.PublicDocument {
	return dto.PublicDocument{
		ID:              record.ID,
		Title:           record.Title,
		Slug:            record.Slug,
		Summary:         record.Summary,
		ContentTypeName: record.ContentTypeName,
		Date:            record.PublishedAt,
		AuthorUsername:  record.AuthorUsername,
	}
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
