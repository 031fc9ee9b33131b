package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/internal/service"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type eventServiceMock struct {
	created dto.EventRequest
	err     error
}

func (m *eventServiceMock) List(ctx context.Context) ([]models.CalendarEvent, error) {
	return []models.CalendarEvent{{ID: 1, Title: "Kajian", StartDate: "2025-03-01", IsAllDay: true}}, nil
}

func (m *eventServiceMock) Get(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	if id != 1 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
	}
	return &models.CalendarEvent{ID: 1, Title: "Kajian", StartDate: "2025-03-01"}, nil
}

func (m *eventServiceMock) Create(ctx context.Context, req dto.EventRequest, actor *models.JWTClaims) (*models.CalendarEvent, error) {
	m.created = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.CalendarEvent{ID: 2, Title: req.Title, StartDate: req.StartDate}, nil
}

func (m *eventServiceMock) Update(ctx context.Context, id int64, req dto.EventRequest) (*models.CalendarEvent, error) {
	return &models.CalendarEvent{ID: id, Title: req.Title, StartDate: req.StartDate}, nil
}

func (m *eventServiceMock) Delete(ctx context.Context, id int64) error {
	return m.err
}

type eventExporterMock struct {
	format dto.EventExportFormat
}

func (m *eventExporterMock) Export(ctx context.Context, format dto.EventExportFormat) (*service.ExportFile, error) {
	m.format = format
	if format != dto.EventExportCSV && format != dto.EventExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	return &service.ExportFile{Filename: "agenda-20250301." + string(format), ContentType: "text/csv", Data: []byte("Title\n")}, nil
}

func TestEventHandlerGet(t *testing.T) {
	h := NewEventHandler(&eventServiceMock{}, &eventExporterMock{})

	c, w := newTestContext(http.MethodGet, "/api/events/1", "")
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	c, w = newTestContext(http.MethodGet, "/api/events/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "event not found", decodeError(t, w).Message)
}

func TestEventHandlerCreateValidationError(t *testing.T) {
	svc := &eventServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "end_date must be on or after start_date")}
	h := NewEventHandler(svc, &eventExporterMock{})
	c, w := newTestContext(http.MethodPost, "/api/events", `{"title":"Rapat","start_date":"2025-03-02","end_date":"2025-03-01","is_all_day":true}`)

	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "2025-03-02", svc.created.StartDate)
	assert.True(t, svc.created.IsAllDay)
}

func TestEventHandlerExportDefaultsToCSV(t *testing.T) {
	exporter := &eventExporterMock{}
	h := NewEventHandler(&eventServiceMock{}, exporter)
	c, w := newTestContext(http.MethodGet, "/api/events/export", "")

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.EventExportCSV, exporter.format)
	assert.Equal(t, `attachment; filename="agenda-20250301.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Title\n", w.Body.String())
}

func TestEventHandlerExportRejectsUnknownFormat(t *testing.T) {
	h := NewEventHandler(&eventServiceMock{}, &eventExporterMock{})
	c, w := newTestContext(http.MethodGet, "/api/events/export?format=xlsx", "")

	h.Export(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}
