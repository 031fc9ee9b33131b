package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nurdhuha/website-ukim/internal/middleware"
	"github.com/Nurdhuha/website-ukim/internal/models"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// idParam parses the :id path parameter. Non-numeric ids cannot exist and
// are reported as not found.
func idParam(c *gin.Context, notFound string) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return id, nil
}

func invalidJSON(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "request body must be valid JSON")
}
