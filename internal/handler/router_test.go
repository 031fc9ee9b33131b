package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/middleware"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/internal/service"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type galleryServiceMock struct{}

func (galleryServiceMock) ListForAdmin(ctx context.Context) ([]dto.GalleryAdminItem, error) {
	return []dto.GalleryAdminItem{}, nil
}

func (galleryServiceMock) ListPublic(ctx context.Context) ([]dto.GalleryPublicItem, error) {
	return []dto.GalleryPublicItem{{ID: 1, Title: "Wisuda", ImageURLs: []string{"/uploads/a.jpg"}}}, nil
}

func (galleryServiceMock) Create(ctx context.Context, req dto.GalleryRequest, actor *models.JWTClaims) (*models.ContentRecord, error) {
	return &models.ContentRecord{Content: models.Content{ID: 1, Title: req.Title}}, nil
}

func (galleryServiceMock) Update(ctx context.Context, id int64, req dto.GalleryRequest) (*models.ContentRecord, error) {
	return &models.ContentRecord{Content: models.Content{ID: id, Title: req.Title}}, nil
}

func (galleryServiceMock) Delete(ctx context.Context, id int64) error { return nil }

type routerTokenValidator struct{}

func (routerTokenValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	switch token {
	case "admin":
		return &models.JWTClaims{UserID: 1, Username: "admin", Role: models.RoleAdmin}, nil
	case "guest":
		return &models.JWTClaims{UserID: 2, Username: "guest", Role: models.UserRole("VIEWER")}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type pingerStub struct{ err error }

func (p pingerStub) PingContext(ctx context.Context) error { return p.err }

func newTestRouter(t *testing.T) (*gin.Engine, *contentServiceMock, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "poster.png"), []byte("png"), 0o644))

	content := &contentServiceMock{}
	r := gin.New()
	RegisterRoutes(r, RouterConfig{UploadsDir: dir}, Handlers{
		Content: NewContentHandler(content),
		Gallery: NewGalleryHandler(galleryServiceMock{}),
		Event:   NewEventHandler(&eventServiceMock{}, &eventExporterMock{}),
		Upload:  NewUploadHandler(&uploadServiceMock{}, UploadLimits{}),
		Auth:    NewAuthHandler(nil),
		Health:  NewHealthHandler(pingerStub{}, service.NewMetricsService()),
	}, Guards{
		Admin: gin.HandlersChain{
			middleware.JWT(routerTokenValidator{}),
			middleware.RequireRoles(models.RoleAdmin, models.RoleEditor),
		},
		Upload: gin.HandlersChain{middleware.NewClientRateLimiter(0, 0).Middleware()},
	})
	return r, content, dir
}

func serve(r *gin.Engine, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterPublicRoutes(t *testing.T) {
	r, content, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/content/akademik", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "akademik", content.slug)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/gallery/public", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/events", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/events/1", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", "", "").Code)
}

func TestRouterExportIsNotAnEventID(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/events/export?format=csv", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "agenda-")
}

func TestRouterAdminRoutesRequireToken(t *testing.T) {
	r, content, _ := newTestRouter(t)

	cases := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodGet, "/api/content/admin/all?type=artikel", ""},
		{http.MethodPost, "/api/content", `{"type":"artikel","title":"x"}`},
		{http.MethodPut, "/api/content/1", `{"title":"x"}`},
		{http.MethodDelete, "/api/content/1", ""},
		{http.MethodGet, "/api/gallery/admin/all", ""},
		{http.MethodPost, "/api/gallery", `{"title":"x"}`},
		{http.MethodPost, "/api/events", `{"title":"x"}`},
		{http.MethodDelete, "/api/events/1", ""},
		{http.MethodPost, "/api/upload", ""},
		{http.MethodPost, "/api/upload-pdf", ""},
	}
	for _, tc := range cases {
		w := serve(r, tc.method, tc.target, "", tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.target)

		w = serve(r, tc.method, tc.target, "guest", tc.body)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.target)
	}
	assert.Empty(t, content.created.Type)
}

func TestRouterAdminListWithToken(t *testing.T) {
	r, content, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/content/admin/all?type=pengumuman", "admin", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pengumuman", content.slug)
}

func TestRouterServesUploads(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := serve(r, http.MethodGet, "/uploads/poster.png", "", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/uploads/missing.png", "", "").Code)
}
