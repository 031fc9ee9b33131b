package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

type staticEvents []models.CalendarEvent

func (s staticEvents) List(ctx context.Context) ([]models.CalendarEvent, error) {
	return s, nil
}

func TestEventExportCSV(t *testing.T) {
	events := staticEvents{
		{Title: "Libur", IsAllDay: true, StartDate: "2025-01-10", EndDate: strp("2025-01-20")},
		{Title: "Rapat", StartDate: "2025-02-01", StartTime: strp("09:00"), EndTime: strp("11:00"), Location: strp("Aula")},
	}
	svc := NewEventExportService(events, nil, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), dto.EventExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "agenda-20250301.csv", file.Filename)
	body := string(file.Data)
	assert.True(t, strings.HasPrefix(body, "Title,Date,Time,Location,Description"))
	assert.Contains(t, body, "Libur,2025-01-10 - 2025-01-20,All day,,")
	assert.Contains(t, body, "Rapat,2025-02-01,09:00 - 11:00,Aula,")
}

func TestEventExportPDFAndUnknownFormat(t *testing.T) {
	svc := NewEventExportService(staticEvents{{Title: "Rapat", StartDate: "2025-02-01", StartTime: strp("09:00")}}, nil, nil, nil)

	file, err := svc.Export(context.Background(), dto.EventExportPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))

	_, err = svc.Export(context.Background(), "xlsx")
	requireAppError(t, err, 400)
}
