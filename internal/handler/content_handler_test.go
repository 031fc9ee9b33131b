package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/middleware"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type contentServiceMock struct {
	slug      string
	created   dto.CreateContentRequest
	actor     *models.JWTClaims
	updatedID int64
	deletedID int64
	err       error
}

func (m *contentServiceMock) ListPublished(ctx context.Context, typeSlug string) ([]interface{}, error) {
	m.slug = typeSlug
	if m.err != nil {
		return nil, m.err
	}
	return []interface{}{dto.PublicDocument{ID: 1, Title: "Hello"}}, nil
}

func (m *contentServiceMock) ListAllForAdmin(ctx context.Context, typeSlug string) ([]models.ContentRecord, error) {
	m.slug = typeSlug
	if typeSlug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content type query parameter is required")
	}
	return []models.ContentRecord{}, nil
}

func (m *contentServiceMock) Create(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentRecord, error) {
	m.created = req
	m.actor = actor
	if m.err != nil {
		return nil, m.err
	}
	return &models.ContentRecord{Content: models.Content{ID: 7, Title: req.Title, Status: models.ContentStatusDraft}}, nil
}

func (m *contentServiceMock) Update(ctx context.Context, id int64, req dto.UpdateContentRequest) (*models.ContentRecord, error) {
	m.updatedID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.ContentRecord{Content: models.Content{ID: id, Title: req.Title}}, nil
}

func (m *contentServiceMock) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	return m.err
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != "" {
		req, _ = http.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) appErrors.Error {
	t.Helper()
	var body appErrors.Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestContentHandlerListPublished(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/content/pengumuman", "")
	c.Params = gin.Params{{Key: "typeSlug", Value: "pengumuman"}}

	h.ListPublished(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pengumuman", svc.slug)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Hello", items[0]["title"])
}

func TestContentHandlerListPublishedInternalError(t *testing.T) {
	svc := &contentServiceMock{err: appErrors.Wrap(assert.AnError, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list content")}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodGet, "/api/content/artikel", "")
	c.Params = gin.Params{{Key: "typeSlug", Value: "artikel"}}

	h.ListPublished(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	assert.Len(t, c.Errors, 1)
}

func TestContentHandlerAdminListRequiresType(t *testing.T) {
	h := NewContentHandler(&contentServiceMock{})
	c, w := newTestContext(http.MethodGet, "/api/content/admin/all", "")

	h.ListAllForAdmin(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "content type query parameter is required", decodeError(t, w).Message)
}

func TestContentHandlerCreatePassesActor(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodPost, "/api/content", `{"type":"artikel","title":"Kajian","body":{"content":"# hi"}}`)
	claims := &models.JWTClaims{UserID: 3, Username: "editor", Role: models.RoleEditor}
	c.Set(middleware.ContextUserKey, claims)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "artikel", svc.created.Type)
	assert.JSONEq(t, `{"content":"# hi"}`, string(svc.created.Body))
	assert.Same(t, claims, svc.actor)
}

func TestContentHandlerCreateRejectsMalformedJSON(t *testing.T) {
	h := NewContentHandler(&contentServiceMock{})
	c, w := newTestContext(http.MethodPost, "/api/content", `{"type":`)

	h.Create(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	assert.Equal(t, "request body must be valid JSON", body.Message)
}

func TestContentHandlerUpdateInvalidID(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodPut, "/api/content/abc", `{"title":"x"}`)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Update(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, svc.updatedID)
}

func TestContentHandlerUpdate(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodPut, "/api/content/12", `{"title":"Baru"}`)
	c.Params = gin.Params{{Key: "id", Value: "12"}}

	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(12), svc.updatedID)
}

func TestContentHandlerDeleteNotFound(t *testing.T) {
	svc := &contentServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "content not found")}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodDelete, "/api/content/5", "")
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "content not found", decodeError(t, w).Message)
	assert.Equal(t, int64(5), svc.deletedID)
}

func TestContentHandlerDelete(t *testing.T) {
	svc := &contentServiceMock{}
	h := NewContentHandler(svc)
	c, w := newTestContext(http.MethodDelete, "/api/content/5", "")
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
