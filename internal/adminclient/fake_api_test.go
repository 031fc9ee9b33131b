package adminclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

// fakeAPI is an in-memory stand-in for the content API.
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int64
	content  map[int64]models.ContentRecord
	events   map[int64]models.CalendarEvent
	uploads  []string
	payloads []json.RawMessage
	calls    []string

	rejectUpload string
	failList     bool
	createGate   chan struct{}
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	t.Helper()
	api := &fakeAPI{
		nextID:  1,
		content: map[int64]models.ContentRecord{},
		events:  map[int64]models.CalendarEvent{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/content/admin/all", api.listContent)
	mux.HandleFunc("POST /api/content", api.createContent)
	mux.HandleFunc("PUT /api/content/{id}", api.updateContent)
	mux.HandleFunc("DELETE /api/content/{id}", api.deleteContent)
	mux.HandleFunc("GET /api/events", api.listEvents)
	mux.HandleFunc("POST /api/events", api.createEvent)
	mux.HandleFunc("POST /api/upload", api.upload("file"))
	mux.HandleFunc("POST /api/upload-pdf", api.upload("pdf"))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, New(srv.URL + "/api")
}

func (a *fakeAPI) record(call string) {
	a.mu.Lock()
	a.calls = append(a.calls, call)
	a.mu.Unlock()
}

func (a *fakeAPI) callLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{"code": code, "message": message, "status": status})
}

func (a *fakeAPI) listContent(w http.ResponseWriter, r *http.Request) {
	a.record("list")
	if a.failList {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	typeSlug := r.URL.Query().Get("type")
	a.mu.Lock()
	items := []models.ContentRecord{}
	for _, rec := range a.content {
		if rec.ContentTypeSlug == typeSlug {
			items = append(items, rec)
		}
	}
	a.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	writeJSON(w, http.StatusOK, items)
}

func (a *fakeAPI) createContent(w http.ResponseWriter, r *http.Request) {
	a.record("create")
	if a.createGate != nil {
		<-a.createGate
	}
	raw, _ := io.ReadAll(r.Body)
	var req dto.CreateContentRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body must be valid JSON")
		return
	}
	status := req.Status
	if status == "" {
		status = models.ContentStatusDraft
	}
	a.mu.Lock()
	a.payloads = append(a.payloads, raw)
	rec := models.ContentRecord{
		Content: models.Content{
			ID:        a.nextID,
			Title:     req.Title,
			Slug:      req.Slug,
			Summary:   req.Summary,
			Body:      []byte(req.Body),
			Status:    status,
			UpdatedAt: time.Now().UTC(),
		},
		ContentTypeSlug: req.Type,
	}
	a.content[rec.ID] = rec
	a.nextID++
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, rec)
}

func (a *fakeAPI) updateContent(w http.ResponseWriter, r *http.Request) {
	a.record("update")
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	raw, _ := io.ReadAll(r.Body)
	var req dto.UpdateContentRequest
	_ = json.Unmarshal(raw, &req)
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.content[id]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "content not found")
		return
	}
	a.payloads = append(a.payloads, raw)
	rec.Title = req.Title
	rec.Body = []byte(req.Body)
	rec.UpdatedAt = time.Now().UTC()
	a.content[id] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (a *fakeAPI) deleteContent(w http.ResponseWriter, r *http.Request) {
	a.record("delete")
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.content[id]; !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "content not found")
		return
	}
	delete(a.content, id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *fakeAPI) listEvents(w http.ResponseWriter, r *http.Request) {
	a.record("list")
	a.mu.Lock()
	items := []models.CalendarEvent{}
	for _, ev := range a.events {
		items = append(items, ev)
	}
	a.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (a *fakeAPI) createEvent(w http.ResponseWriter, r *http.Request) {
	a.record("create")
	raw, _ := io.ReadAll(r.Body)
	var req dto.EventRequest
	_ = json.Unmarshal(raw, &req)
	a.mu.Lock()
	a.payloads = append(a.payloads, raw)
	ev := models.CalendarEvent{ID: a.nextID, Title: req.Title, IsAllDay: req.IsAllDay, StartDate: req.StartDate, StartTime: req.StartTime}
	a.events[ev.ID] = ev
	a.nextID++
	a.mu.Unlock()
	writeJSON(w, http.StatusCreated, ev)
}

func (a *fakeAPI) upload(field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.record("upload")
		file, header, err := r.FormFile(field)
		if err != nil {
			writeError(w, http.StatusBadRequest, "UPLOAD_REJECTED", "no file uploaded")
			return
		}
		defer file.Close()
		if a.rejectUpload != "" && strings.Contains(header.Filename, a.rejectUpload) {
			writeError(w, http.StatusBadRequest, "UPLOAD_REJECTED", "file exceeds the 2 MB limit")
			return
		}
		a.mu.Lock()
		path := fmt.Sprintf("/uploads/%d-%s", len(a.uploads)+1, header.Filename)
		a.uploads = append(a.uploads, path)
		a.mu.Unlock()
		writeJSON(w, http.StatusOK, dto.UploadResponse{Message: "File uploaded successfully", FilePath: path})
	}
}
