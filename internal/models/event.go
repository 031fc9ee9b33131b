package models

import "time"

// CalendarEvent mirrors a row of calendar_events. Dates are YYYY-MM-DD and
// times HH:MM, both without zone information.
type CalendarEvent struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	Location    *string   `db:"location" json:"location"`
	IsAllDay    bool      `db:"is_all_day" json:"is_all_day"`
	StartDate   string    `db:"start_date" json:"start_date"`
	EndDate     *string   `db:"end_date" json:"end_date"`
	StartTime   *string   `db:"start_time" json:"start_time"`
	EndTime     *string   `db:"end_time" json:"end_time"`
	CreatedBy   *int64    `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
