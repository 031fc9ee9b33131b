package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/internal/service"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		if _, ok := c.Get(ContextUserKey); ok {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusNoContent)
	})
	router.GET("/", handlers...)
	return router
}

func serve(router *gin.Engine, header string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{Username: "admin", Role: models.RoleAdmin}}
	router := newRouter(JWT(validator))

	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, "Bearer bad").Code)
	assert.Equal(t, http.StatusOK, serve(router, "Bearer good").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{Username: "admin"}}
	router := newRouter(OptionalJWT(validator))

	assert.Equal(t, http.StatusNoContent, serve(router, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "Bearer bad").Code)
	assert.Equal(t, http.StatusOK, serve(router, "bearer good").Code)
}

func TestRequireRoles(t *testing.T) {
	editor := stubValidator{claims: &models.JWTClaims{Username: "e", Role: models.RoleEditor}}
	router := newRouter(JWT(editor), RequireRoles(models.RoleAdmin))
	rec := serve(router, "Bearer good")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)

	router = newRouter(JWT(editor), RequireRoles(models.RoleAdmin, models.RoleEditor))
	assert.Equal(t, http.StatusOK, serve(router, "Bearer good").Code)

	router = newRouter(RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, serve(router, "").Code)
}

func TestClientRateLimiter(t *testing.T) {
	limiter := NewClientRateLimiter(0.001, 2)
	router := newRouter(limiter.Middleware())

	assert.Equal(t, http.StatusNoContent, serve(router, "").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, "").Code)
	rec := serve(router, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)

	disabled := newRouter(NewClientRateLimiter(0, 1).Middleware())
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, serve(disabled, "").Code)
	}
}

func TestMetricsMiddlewareRecords(t *testing.T) {
	metrics := service.NewMetricsService()
	router := newRouter(Metrics(metrics))
	assert.Equal(t, http.StatusNoContent, serve(router, "").Code)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `ukim_http_requests_total{method="GET",path="/",status="204"} 1`)
}
