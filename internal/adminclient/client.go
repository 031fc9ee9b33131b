// Package adminclient drives the admin content workflows against the HTTP API.
package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
)

// APIError is a non-2xx answer from the API. Message is meant to be shown
// to the user as-is.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is a typed client for the content, gallery, event and upload APIs.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	logger  *zap.Logger
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and keeps the issued token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var res models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Username: username, Password: password}, &res); err != nil {
		return nil, err
	}
	c.token = res.AccessToken
	return &res, nil
}

// ListContent returns every row of typeSlug, drafts included.
func (c *Client) ListContent(ctx context.Context, typeSlug string) ([]models.ContentRecord, error) {
	var items []models.ContentRecord
	err := c.do(ctx, http.MethodGet, "/content/admin/all?type="+url.QueryEscape(typeSlug), nil, &items)
	return items, err
}

// CreateContent creates a content row.
func (c *Client) CreateContent(ctx context.Context, req dto.CreateContentRequest) (*models.ContentRecord, error) {
	var record models.ContentRecord
	if err := c.do(ctx, http.MethodPost, "/content", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateContent replaces the mutable fields of a content row.
func (c *Client) UpdateContent(ctx context.Context, id int64, req dto.UpdateContentRequest) (*models.ContentRecord, error) {
	var record models.ContentRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/content/%d", id), req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteContent removes a content row.
func (c *Client) DeleteContent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/content/%d", id), nil, nil)
}

// ListGallery returns every gallery item, drafts included.
func (c *Client) ListGallery(ctx context.Context) ([]dto.GalleryAdminItem, error) {
	var items []dto.GalleryAdminItem
	err := c.do(ctx, http.MethodGet, "/gallery/admin/all", nil, &items)
	return items, err
}

// CreateGallery creates a gallery item.
func (c *Client) CreateGallery(ctx context.Context, req dto.GalleryRequest) (*models.ContentRecord, error) {
	var record models.ContentRecord
	if err := c.do(ctx, http.MethodPost, "/gallery", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateGallery replaces a gallery item.
func (c *Client) UpdateGallery(ctx context.Context, id int64, req dto.GalleryRequest) (*models.ContentRecord, error) {
	var record models.ContentRecord
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/gallery/%d", id), req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteGallery removes a gallery item.
func (c *Client) DeleteGallery(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/gallery/%d", id), nil, nil)
}

// ListEvents returns the agenda.
func (c *Client) ListEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	var items []models.CalendarEvent
	err := c.do(ctx, http.MethodGet, "/events", nil, &items)
	return items, err
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, req dto.EventRequest) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := c.do(ctx, http.MethodPost, "/events", req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces an event.
func (c *Client) UpdateEvent(ctx context.Context, id int64, req dto.EventRequest) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

// Upload sends one file to the upload endpoint matching kind.
func (c *Client) Upload(ctx context.Context, kind dto.UploadKind, filename string, content io.Reader) (*dto.UploadResponse, error) {
	path, field := "/upload", "file"
	if kind == dto.UploadKindPDF {
		path, field = "/upload-pdf", "pdf"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build upload form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var res dto.UploadResponse
	if err := c.send(req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// listRaw returns the admin listing of view without decoding the rows.
func (c *Client) listRaw(ctx context.Context, view View) ([]json.RawMessage, error) {
	var path string
	switch view {
	case ViewEvents:
		path = "/events"
	case ViewGallery:
		path = "/gallery/admin/all"
	default:
		path = "/content/admin/all?type=" + url.QueryEscape(string(view))
	}
	var rows []json.RawMessage
	err := c.do(ctx, http.MethodGet, path, nil, &rows)
	return rows, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api call",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{}
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
