package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/pkg/response"
)

type contentService interface {
	ListPublished(ctx context.Context, typeSlug string) ([]interface{}, error)
	ListAllForAdmin(ctx context.Context, typeSlug string) ([]models.ContentRecord, error)
	Create(ctx context.Context, req dto.CreateContentRequest, actor *models.JWTClaims) (*models.ContentRecord, error)
	Update(ctx context.Context, id int64, req dto.UpdateContentRequest) (*models.ContentRecord, error)
	Delete(ctx context.Context, id int64) error
}

// ContentHandler exposes content endpoints.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs a content handler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

// ListPublished godoc
// @Summary List published content of a type
// @Tags Content
// @Produce json
// @Param typeSlug path string true "Content type slug"
// @Success 200 {array} object
// @Failure 500 {object} errors.Error
// @Router /content/{typeSlug} [get]
func (h *ContentHandler) ListPublished(c *gin.Context) {
	items, err := h.service.ListPublished(c.Request.Context(), c.Param("typeSlug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// ListAllForAdmin godoc
// @Summary List draft and published content of a type
// @Tags Content
// @Produce json
// @Security BearerAuth
// @Param type query string true "Content type slug"
// @Success 200 {array} models.ContentRecord
// @Failure 400 {object} errors.Error
// @Router /content/admin/all [get]
func (h *ContentHandler) ListAllForAdmin(c *gin.Context) {
	items, err := h.service.ListAllForAdmin(c.Request.Context(), c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Create godoc
// @Summary Create content
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateContentRequest true "Content payload"
// @Success 201 {object} models.ContentRecord
// @Failure 400 {object} errors.Error
// @Router /content [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req dto.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidJSON(err))
		return
	}
	record, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Replace content
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Param payload body dto.UpdateContentRequest true "Content payload"
// @Success 200 {object} models.ContentRecord
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Router /content/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	id, err := idParam(c, "content not found")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidJSON(err))
		return
	}
	record, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Delete content
// @Tags Content
// @Security BearerAuth
// @Param id path int true "Content ID"
// @Success 204
// @Failure 404 {object} errors.Error
// @Router /content/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "content not found")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
