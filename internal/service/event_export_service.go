package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
	"github.com/Nurdhuha/website-ukim/pkg/export"
)

type eventLister interface {
	List(ctx context.Context) ([]models.CalendarEvent, error)
}

type datasetRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered agenda ready to be streamed to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EventExportService renders the agenda into downloadable documents.
type EventExportService struct {
	events    eventLister
	renderers map[dto.EventExportFormat]datasetRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventExportService constructs the export service. Nil renderers fall
// back to the default CSV and PDF exporters.
func NewEventExportService(events eventLister, csv, pdf datasetRenderer, logger *zap.Logger) *EventExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventExportService{
		events: events,
		renderers: map[dto.EventExportFormat]datasetRenderer{
			dto.EventExportCSV: csv,
			dto.EventExportPDF: pdf,
		},
		logger: logger,
		now:    time.Now,
	}
}

// Export renders every event in the requested format.
func (s *EventExportService) Export(ctx context.Context, format dto.EventExportFormat) (*ExportFile, error) {
	if format == "" {
		format = dto.EventExportCSV
	}
	renderer, ok := s.renderers[dto.EventExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := renderer.Render(agendaDataset(events))
	if err != nil {
		s.logger.Error("render agenda export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("agenda-%s.%s", s.now().Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func agendaDataset(events []models.CalendarEvent) export.Dataset {
	headers := []string{"Title", "Date", "Time", "Location", "Description"}
	rows := make([]map[string]string, 0, len(events))
	for _, event := range events {
		date := event.StartDate
		if event.EndDate != nil && *event.EndDate != event.StartDate {
			date += " - " + *event.EndDate
		}
		timeRange := "All day"
		if !event.IsAllDay {
			timeRange = deref(event.StartTime)
			if event.EndTime != nil {
				timeRange += " - " + *event.EndTime
			}
		}
		rows = append(rows, map[string]string{
			"Title":       event.Title,
			"Date":        date,
			"Time":        timeRange,
			"Location":    deref(event.Location),
			"Description": deref(event.Description),
		})
	}
	return export.Dataset{
		Title:   "Agenda",
		Headers: headers,
		Rows:    rows,
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
