package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/models"
)

var eventColumns = []string{"id", "title", "description", "location", "is_all_day", "start_date", "end_date", "start_time", "end_time", "created_by", "created_at", "updated_at"}

func TestCalendarListOrdersByStart(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(eventColumns).
		AddRow(1, "Rapat", nil, "Aula", true, "2025-01-10", nil, nil, nil, 1, now, now).
		AddRow(2, "Seminar", "Umum", nil, false, "2025-01-10", "2025-01-10", "09:00", "11:30", 1, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY start_date ASC, start_time ASC NULLS FIRST, id ASC")).WillReturnRows(rows)

	events, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].IsAllDay)
	assert.Nil(t, events[0].StartTime)
	require.NotNil(t, events[1].StartTime)
	assert.Equal(t, "09:00", *events[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarCreateCastsDateAndTime(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	now := time.Now()
	start := "08:00"
	mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5::date, $6::date, $7::time, $8::time, (SELECT id FROM users WHERE username = $9))")).
		WithArgs("Lomba", nil, nil, false, "2025-02-01", nil, &start, nil, "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_by", "created_at", "updated_at"}).AddRow(7, 1, now, now))

	event := &models.CalendarEvent{Title: "Lomba", StartDate: "2025-02-01", StartTime: &start}
	require.NoError(t, repo.Create(context.Background(), event, "admin"))
	assert.Equal(t, int64(7), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarUpdateUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE calendar_events SET")).WillReturnRows(sqlmock.NewRows([]string{"created_by", "created_at", "updated_at"}))

	err := repo.Update(context.Background(), &models.CalendarEvent{ID: 3, Title: "x", StartDate: "2025-01-01"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarDeleteUnknown(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM calendar_events WHERE id = $1")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 4), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
