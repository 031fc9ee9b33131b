package adminclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

// View is an admin category. Every content type is a view; events are one too.
type View string

const (
	ViewArticle      View = models.ContentTypeArticle
	ViewAnnouncement View = models.ContentTypeAnnouncement
	ViewAcademic     View = models.ContentTypeAcademic
	ViewAchievement  View = models.ContentTypeAchievement
	ViewPages        View = models.ContentTypePages
	ViewGallery      View = models.ContentTypeGallery
	ViewEvents       View = "events"
)

// Views lists every admin view in menu order.
var Views = []View{ViewArticle, ViewAnnouncement, ViewAcademic, ViewAchievement, ViewGallery, ViewEvents, ViewPages}

var viewAliases = map[string]View{
	"prestasi":     ViewAchievement,
	"achievements": ViewAchievement,
	"galeri":       ViewGallery,
	"agenda":       ViewEvents,
	"event":        ViewEvents,
}

// ParseView resolves a view name, accepting the legacy menu aliases.
func ParseView(raw string) (View, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := viewAliases[name]; ok {
		return alias, nil
	}
	for _, v := range Views {
		if string(v) == name {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", raw)
}

// PendingFile is a local file selected for upload on the next submit.
type PendingFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileFromPath selects the file at path.
func FileFromPath(path string) PendingFile {
	return PendingFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

type pendingUpload struct {
	kind dto.UploadKind
	file PendingFile
}

// Form is the editable state of one record. The concrete type depends on the
// view: *DocumentForm, *GalleryForm or *EventForm.
type Form interface {
	View() View
	// RecordID is zero for a record that does not exist yet.
	RecordID() int64
	Validate() error

	uploads() []pendingUpload
	// applyUploads receives the stored paths in uploads() order and clears
	// the pending files.
	applyUploads(paths []string)
	save(ctx context.Context, c *Client) error
}

// NewForm returns an empty form for view.
func NewForm(view View) Form {
	switch view {
	case ViewEvents:
		return &EventForm{}
	case ViewGallery:
		return &GalleryForm{Status: models.ContentStatusDraft}
	default:
		return &DocumentForm{Type: view, Status: models.ContentStatusDraft}
	}
}

// FormFor initialises a form from a listed row of view.
func FormFor(view View, raw json.RawMessage) (Form, error) {
	switch view {
	case ViewEvents:
		var event models.CalendarEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		return eventFormFrom(event), nil
	case ViewGallery:
		var item dto.GalleryAdminItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("decode gallery item: %w", err)
		}
		return galleryFormFrom(item), nil
	default:
		var record models.ContentRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("decode content: %w", err)
		}
		return documentFormFrom(view, record), nil
	}
}

// DocumentBody holds the media and text fields of document types. Keys
// without a dedicated field survive in Extra.
type DocumentBody struct {
	ImageURL       string
	ContentFileURL string
	Content        string
	Category       string
	Extra          map[string]interface{}
}

// DocumentForm edits artikel, pengumuman, akademik, achievement and pages rows.
type DocumentForm struct {
	ID          int64
	Type        View
	Title       string
	Slug        string
	Summary     string
	Status      models.ContentStatus
	PublishedAt string
	Body        DocumentBody

	// Image replaces Body.ImageURL; ContentFile (a PDF) replaces Body.ContentFileURL.
	Image       *PendingFile
	ContentFile *PendingFile
}

func (f *DocumentForm) View() View      { return f.Type }
func (f *DocumentForm) RecordID() int64 { return f.ID }

// Validate checks the fields the API requires.
func (f *DocumentForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	return nil
}

func (f *DocumentForm) uploads() []pendingUpload {
	var out []pendingUpload
	if f.Image != nil {
		out = append(out, pendingUpload{kind: dto.UploadKindImage, file: *f.Image})
	}
	if f.ContentFile != nil {
		out = append(out, pendingUpload{kind: dto.UploadKindPDF, file: *f.ContentFile})
	}
	return out
}

func (f *DocumentForm) applyUploads(paths []string) {
	i := 0
	if f.Image != nil {
		f.Body.ImageURL = paths[i]
		f.Image = nil
		i++
	}
	if f.ContentFile != nil {
		f.Body.ContentFileURL = paths[i]
		f.ContentFile = nil
	}
}

func (f *DocumentForm) body() json.RawMessage {
	fields := make(map[string]interface{}, len(f.Body.Extra)+4)
	for k, v := range f.Body.Extra {
		fields[k] = v
	}
	setIfPresent(fields, "imageUrl", f.Body.ImageURL)
	setIfPresent(fields, "contentFileUrl", f.Body.ContentFileURL)
	setIfPresent(fields, "content", f.Body.Content)
	setIfPresent(fields, "category", f.Body.Category)
	raw, _ := json.Marshal(fields)
	return raw
}

// CreateRequest maps the form onto the create payload.
func (f *DocumentForm) CreateRequest() dto.CreateContentRequest {
	return dto.CreateContentRequest{
		Type:        string(f.Type),
		Title:       strings.TrimSpace(f.Title),
		Slug:        optional(f.Slug),
		Summary:     optional(f.Summary),
		Body:        f.body(),
		Status:      f.Status,
		PublishedAt: optional(f.PublishedAt),
	}
}

// UpdateRequest maps the form onto the update payload.
func (f *DocumentForm) UpdateRequest() dto.UpdateContentRequest {
	req := f.CreateRequest()
	return dto.UpdateContentRequest{
		Title:       req.Title,
		Slug:        req.Slug,
		Summary:     req.Summary,
		Body:        req.Body,
		Status:      req.Status,
		PublishedAt: req.PublishedAt,
	}
}

func (f *DocumentForm) save(ctx context.Context, c *Client) error {
	if f.ID == 0 {
		_, err := c.CreateContent(ctx, f.CreateRequest())
		return err
	}
	_, err := c.UpdateContent(ctx, f.ID, f.UpdateRequest())
	return err
}

func documentFormFrom(view View, record models.ContentRecord) *DocumentForm {
	form := &DocumentForm{
		ID:     record.ID,
		Type:   view,
		Title:  record.Title,
		Status: record.Status,
	}
	if record.Slug != nil {
		form.Slug = *record.Slug
	}
	if record.Summary != nil {
		form.Summary = *record.Summary
	}
	if record.PublishedAt != nil {
		form.PublishedAt = record.PublishedAt.UTC().Format(time.RFC3339)
	}

	fields := decodeBody(record.Body)
	form.Body.ImageURL = takeString(fields, "imageUrl")
	form.Body.ContentFileURL = takeString(fields, "contentFileUrl")
	form.Body.Content = takeString(fields, "content")
	form.Body.Category = takeString(fields, "category")
	if len(fields) > 0 {
		form.Body.Extra = fields
	}
	return form
}

// GalleryForm edits a gallery item.
type GalleryForm struct {
	ID           int64
	Title        string
	Status       models.ContentStatus
	Department   string
	ActivityDate string
	ImageURLs    []string

	// Images, when set, replace ImageURLs on submit.
	Images []PendingFile
}

func (f *GalleryForm) View() View      { return ViewGallery }
func (f *GalleryForm) RecordID() int64 { return f.ID }

// Validate checks the title and the image count.
func (f *GalleryForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(f.Images) > models.MaxGalleryImages {
		return fmt.Errorf("at most %d images can be selected", models.MaxGalleryImages)
	}
	if len(f.Images) == 0 && len(f.ImageURLs) == 0 {
		return fmt.Errorf("at least one image is required")
	}
	return nil
}

func (f *GalleryForm) uploads() []pendingUpload {
	out := make([]pendingUpload, 0, len(f.Images))
	for _, img := range f.Images {
		out = append(out, pendingUpload{kind: dto.UploadKindImage, file: img})
	}
	return out
}

func (f *GalleryForm) applyUploads(paths []string) {
	if len(paths) > 0 {
		f.ImageURLs = append([]string(nil), paths...)
	}
	f.Images = nil
}

// Request maps the form onto the gallery payload.
func (f *GalleryForm) Request() dto.GalleryRequest {
	return dto.GalleryRequest{
		Title:        strings.TrimSpace(f.Title),
		Status:       f.Status,
		Department:   optional(f.Department),
		ActivityDate: optional(f.ActivityDate),
		Body:         &models.GalleryBody{ImageURLs: append([]string{}, f.ImageURLs...)},
	}
}

func (f *GalleryForm) save(ctx context.Context, c *Client) error {
	if f.ID == 0 {
		_, err := c.CreateGallery(ctx, f.Request())
		return err
	}
	_, err := c.UpdateGallery(ctx, f.ID, f.Request())
	return err
}

func galleryFormFrom(item dto.GalleryAdminItem) *GalleryForm {
	form := &GalleryForm{
		ID:        item.ID,
		Title:     item.Title,
		Status:    item.Status,
		ImageURLs: append([]string(nil), item.ImageURLs...),
	}
	if item.Department != nil {
		form.Department = *item.Department
	}
	if item.ActivityDate != nil {
		form.ActivityDate = datePart(*item.ActivityDate)
	}
	return form
}

// EventForm edits an agenda entry.
type EventForm struct {
	ID          int64
	Title       string
	Description string
	Location    string
	IsAllDay    bool
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
}

func (f *EventForm) View() View      { return ViewEvents }
func (f *EventForm) RecordID() int64 { return f.ID }

// Validate checks the fields the API requires.
func (f *EventForm) Validate() error {
	if strings.TrimSpace(f.Title) == "" || strings.TrimSpace(f.StartDate) == "" {
		return fmt.Errorf("title and start date are required")
	}
	if !f.IsAllDay && strings.TrimSpace(f.StartTime) == "" {
		return fmt.Errorf("start time is required unless the event is all day")
	}
	return nil
}

func (f *EventForm) uploads() []pendingUpload { return nil }
func (f *EventForm) applyUploads([]string)    {}

// Request maps the form onto the event payload. All-day events carry no times.
func (f *EventForm) Request() dto.EventRequest {
	req := dto.EventRequest{
		Title:       strings.TrimSpace(f.Title),
		Description: optional(f.Description),
		Location:    optional(f.Location),
		IsAllDay:    f.IsAllDay,
		StartDate:   strings.TrimSpace(f.StartDate),
		EndDate:     optional(f.EndDate),
	}
	if !f.IsAllDay {
		req.StartTime = optional(f.StartTime)
		req.EndTime = optional(f.EndTime)
	}
	return req
}

func (f *EventForm) save(ctx context.Context, c *Client) error {
	if f.ID == 0 {
		_, err := c.CreateEvent(ctx, f.Request())
		return err
	}
	_, err := c.UpdateEvent(ctx, f.ID, f.Request())
	return err
}

func eventFormFrom(event models.CalendarEvent) *EventForm {
	form := &EventForm{
		ID:        event.ID,
		Title:     event.Title,
		IsAllDay:  event.IsAllDay,
		StartDate: datePart(event.StartDate),
	}
	if event.Description != nil {
		form.Description = *event.Description
	}
	if event.Location != nil {
		form.Location = *event.Location
	}
	if event.EndDate != nil {
		form.EndDate = datePart(*event.EndDate)
	}
	if event.StartTime != nil {
		form.StartTime = clockPart(*event.StartTime)
	}
	if event.EndTime != nil {
		form.EndTime = clockPart(*event.EndTime)
	}
	return form
}

// decodeBody reads a stored body, unwrapping one that was saved as a JSON
// string. Anything unreadable yields an empty body.
func decodeBody(raw []byte) map[string]interface{} {
	fields := map[string]interface{}{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return fields
	}
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return fields
		}
		trimmed = inner
	}
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil || fields == nil {
		return map[string]interface{}{}
	}
	return fields
}

func takeString(fields map[string]interface{}, key string) string {
	value, ok := fields[key].(string)
	if ok {
		delete(fields, key)
	}
	return value
}

func setIfPresent(fields map[string]interface{}, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		fields[key] = value
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// datePart keeps the YYYY-MM-DD prefix of a date or timestamp.
func datePart(value string) string {
	if len(value) > 10 {
		return value[:10]
	}
	return value
}

// clockPart keeps the HH:MM prefix of a time.
func clockPart(value string) string {
	if len(value) > 5 {
		return value[:5]
	}
	return value
}
