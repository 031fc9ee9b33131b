package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Nurdhuha/website-ukim/internal/models"
)

const eventSelect = `SELECT id, title, description, location, is_all_day,
to_char(start_date, 'YYYY-MM-DD') AS start_date, to_char(end_date, 'YYYY-MM-DD') AS end_date,
to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time,
created_by, created_at, updated_at
FROM calendar_events`

// CalendarRepository persists calendar events.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// List returns every event in agenda order.
func (r *CalendarRepository) List(ctx context.Context) ([]models.CalendarEvent, error) {
	query := eventSelect + `
ORDER BY start_date ASC, start_time ASC NULLS FIRST, id ASC`
	events := make([]models.CalendarEvent, 0)
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// GetByID fetches a calendar event.
func (r *CalendarRepository) GetByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	query := eventSelect + `
WHERE id = $1`
	var event models.CalendarEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return &event, nil
}

// Create inserts a calendar event attributed to creatorUsername.
func (r *CalendarRepository) Create(ctx context.Context, event *models.CalendarEvent, creatorUsername string) error {
	const query = `INSERT INTO calendar_events (title, description, location, is_all_day, start_date, end_date, start_time, end_time, created_by)
VALUES ($1, $2, $3, $4, $5::date, $6::date, $7::time, $8::time, (SELECT id FROM users WHERE username = $9))
RETURNING id, created_by, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.IsAllDay,
		event.StartDate,
		event.EndDate,
		event.StartTime,
		event.EndTime,
		creatorUsername,
	)
	if err := row.Scan(&event.ID, &event.CreatedBy, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// Update modifies an event. Returns sql.ErrNoRows for unknown ids.
func (r *CalendarRepository) Update(ctx context.Context, event *models.CalendarEvent) error {
	const query = `UPDATE calendar_events SET title = $1, description = $2, location = $3, is_all_day = $4,
start_date = $5::date, end_date = $6::date, start_time = $7::time, end_time = $8::time,
updated_at = GREATEST(NOW(), updated_at + INTERVAL '1 microsecond')
WHERE id = $9
RETURNING created_by, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.IsAllDay,
		event.StartDate,
		event.EndDate,
		event.StartTime,
		event.EndTime,
		event.ID,
	)
	if err := row.Scan(&event.CreatedBy, &event.CreatedAt, &event.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update calendar event: %w", err)
	}
	return nil
}

// Delete removes an event. Returns sql.ErrNoRows when nothing was removed.
func (r *CalendarRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete calendar event rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
