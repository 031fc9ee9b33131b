package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

type eventRepoStub struct {
	events   map[int64]*models.CalendarEvent
	nextID   int64
	creators []string
	lists    int
}

func newEventRepoStub() *eventRepoStub {
	return &eventRepoStub{events: map[int64]*models.CalendarEvent{}}
}

func (r *eventRepoStub) List(ctx context.Context) ([]models.CalendarEvent, error) {
	r.lists++
	out := make([]models.CalendarEvent, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, *e)
	}
	return out, nil
}

func (r *eventRepoStub) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

func (r *eventRepoStub) Create(ctx context.Context, event *models.CalendarEvent, creatorUsername string) error {
	r.nextID++
	event.ID = r.nextID
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.creators = append(r.creators, creatorUsername)
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *eventRepoStub) Update(ctx context.Context, event *models.CalendarEvent) error {
	if _, ok := r.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *eventRepoStub) Delete(ctx context.Context, id int64) error {
	if _, ok := r.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.events, id)
	return nil
}

func TestEventServiceAllDayClearsTimes(t *testing.T) {
	repo := newEventRepoStub()
	svc := NewEventService(repo, nil, nil, nil, EventServiceConfig{})

	event, err := svc.Create(context.Background(), dto.EventRequest{
		Title:     "Libur Semester",
		IsAllDay:  true,
		StartDate: "2025-01-10T00:00:00.000Z",
		EndDate:   strp("2025-01-20"),
		StartTime: strp("09:00"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", event.StartDate)
	assert.Equal(t, "2025-01-20", *event.EndDate)
	assert.Nil(t, event.StartTime)
	assert.Nil(t, event.EndTime)
	assert.Equal(t, []string{"admin"}, repo.creators)
}

func TestEventServiceValidation(t *testing.T) {
	svc := NewEventService(newEventRepoStub(), nil, nil, nil, EventServiceConfig{})
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.EventRequest
		msg  string
	}{
		{"missing title", dto.EventRequest{StartDate: "2025-01-01"}, "title and start_date are required"},
		{"missing start date", dto.EventRequest{Title: "Rapat"}, "title and start_date are required"},
		{"timed without start", dto.EventRequest{Title: "Rapat", StartDate: "2025-01-01"}, "start_time is required unless the event is all day"},
		{"bad date", dto.EventRequest{Title: "Rapat", StartDate: "01/02/2025", IsAllDay: true}, "start_date must be a YYYY-MM-DD date"},
		{"end before start", dto.EventRequest{Title: "Rapat", StartDate: "2025-01-05", EndDate: strp("2025-01-04"), IsAllDay: true}, "end_date must be on or after start_date"},
		{"end time before start", dto.EventRequest{Title: "Rapat", StartDate: "2025-01-05", StartTime: strp("10:00"), EndTime: strp("09:30")}, "end_time must not precede start_time"},
		{"bad time", dto.EventRequest{Title: "Rapat", StartDate: "2025-01-05", StartTime: strp("25:00")}, "start_time must be an HH:MM time"},
		{"seconds in time", dto.EventRequest{Title: "Rapat", StartDate: "2025-01-05", StartTime: strp("10:00"), EndTime: strp("11:15:30")}, "end_time must not carry seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req, nil)
			appErr := requireAppError(t, err, 400)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
}

func TestEventServiceTimedEvent(t *testing.T) {
	repo := newEventRepoStub()
	svc := NewEventService(repo, nil, nil, nil, EventServiceConfig{})
	event, err := svc.Create(context.Background(), dto.EventRequest{
		Title:     "Kajian",
		StartDate: "2025-02-01",
		EndDate:   strp("2025-02-02"),
		StartTime: strp("19:30:00"),
		EndTime:   strp("08:00"),
		Location:  strp("  "),
	}, &models.JWTClaims{Username: "editor1"})
	require.NoError(t, err)
	assert.Equal(t, "19:30", *event.StartTime)
	assert.Equal(t, "08:00", *event.EndTime)
	assert.Nil(t, event.Location)
	assert.Equal(t, []string{"editor1"}, repo.creators)
}

func TestEventServiceUpdateDeleteNotFound(t *testing.T) {
	svc := NewEventService(newEventRepoStub(), nil, nil, nil, EventServiceConfig{})
	ctx := context.Background()

	_, err := svc.Update(ctx, 42, dto.EventRequest{Title: "x", StartDate: "2025-01-01", IsAllDay: true})
	requireAppError(t, err, 404)
	requireAppError(t, svc.Delete(ctx, 42), 404)

	created, err := svc.Create(ctx, dto.EventRequest{Title: "x", StartDate: "2025-01-01", IsAllDay: true}, nil)
	require.NoError(t, err)
	updated, err := svc.Update(ctx, created.ID, dto.EventRequest{Title: "y", StartDate: "2025-01-02", IsAllDay: true})
	require.NoError(t, err)
	assert.Equal(t, "y", updated.Title)
	require.NoError(t, svc.Delete(ctx, created.ID))
	requireAppError(t, svc.Delete(ctx, created.ID), 404)
}
