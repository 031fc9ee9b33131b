package dto

// EventRequest is the create/update payload for calendar events.
type EventRequest struct {
	Title       string  `json:"title" validate:"max=255"`
	Description *string `json:"description"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	IsAllDay    bool    `json:"is_all_day"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}

// EventExportFormat selects the renderer for agenda exports.
type EventExportFormat string

const (
	EventExportCSV EventExportFormat = "csv"
	EventExportPDF EventExportFormat = "pdf"
)
