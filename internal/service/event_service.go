package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error)
	Create(ctx context.Context, event *models.CalendarEvent, creatorUsername string) error
	Update(ctx context.Context, event *models.CalendarEvent) error
	Delete(ctx context.Context, id int64) error
}

// EventServiceConfig carries the tunables of the agenda workflows.
type EventServiceConfig struct {
	DefaultAuthor string
	CacheTTL      time.Duration
}

// EventService manages calendar events.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       EventServiceConfig
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg EventServiceConfig) *EventService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultAuthor == "" {
		cfg.DefaultAuthor = "admin"
	}
	return &EventService{repo: repo, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// List returns every event ordered by start date then start time.
func (s *EventService) List(ctx context.Context) ([]models.CalendarEvent, error) {
	var cached []models.CalendarEvent
	if s.cache.Get(ctx, cacheKeyEvents, &cached) {
		return cached, nil
	}
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	s.cache.Set(ctx, cacheKeyEvents, events, s.cfg.CacheTTL)
	return events, nil
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// Create registers a new event attributed to actor or the default author.
func (s *EventService) Create(ctx context.Context, req dto.EventRequest, actor *models.JWTClaims) (*models.CalendarEvent, error) {
	event, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	creator := s.cfg.DefaultAuthor
	if actor != nil && actor.Username != "" {
		creator = actor.Username
	}
	if err := s.repo.Create(ctx, event, creator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.cache.Invalidate(ctx, cacheKeyEvents)
	return event, nil
}

// Update fully replaces an event.
func (s *EventService) Update(ctx context.Context, id int64, req dto.EventRequest) (*models.CalendarEvent, error) {
	event, err := s.normalize(req)
	if err != nil {
		return nil, err
	}
	event.ID = id
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.cache.Invalidate(ctx, cacheKeyEvents)
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.cache.Invalidate(ctx, cacheKeyEvents)
	return nil
}

// normalize validates req and folds it into the stored representation.
// All-day events carry no times; timed events need a start time.
func (s *EventService) normalize(req dto.EventRequest) (*models.CalendarEvent, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || strings.TrimSpace(req.StartDate) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and start_date are required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	startDate, err := parseEventDate(req.StartDate, "start_date")
	if err != nil {
		return nil, err
	}
	event := &models.CalendarEvent{
		Title:       req.Title,
		Description: trimmedOrNil(req.Description),
		Location:    trimmedOrNil(req.Location),
		IsAllDay:    req.IsAllDay,
		StartDate:   startDate,
	}
	if raw := trimmedOrNil(req.EndDate); raw != nil {
		endDate, err := parseEventDate(*raw, "end_date")
		if err != nil {
			return nil, err
		}
		if endDate < startDate {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")
		}
		event.EndDate = &endDate
	}

	if req.IsAllDay {
		return event, nil
	}

	rawStart := trimmedOrNil(req.StartTime)
	if rawStart == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time is required unless the event is all day")
	}
	startTime, err := parseEventTime(*rawStart, "start_time")
	if err != nil {
		return nil, err
	}
	event.StartTime = &startTime
	if raw := trimmedOrNil(req.EndTime); raw != nil {
		endTime, err := parseEventTime(*raw, "end_time")
		if err != nil {
			return nil, err
		}
		sameDay := event.EndDate == nil || *event.EndDate == startDate
		if sameDay && endTime < startTime {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must not precede start_time")
		}
		event.EndTime = &endTime
	}
	return event, nil
}

func parseEventDate(raw, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("2006-01-02"), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.Format("2006-01-02"), nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, field+" must be a YYYY-MM-DD date")
}

// parseEventTime returns HH:MM. Event times are minute precision, so
// HH:MM:SS is accepted only with zero seconds.
func parseEventTime(raw, field string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Second() != 0 {
			return "", appErrors.Clone(appErrors.ErrValidation, field+" must not carry seconds")
		}
		return t.Format("15:04"), nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, field+" must be an HH:MM time")
}
