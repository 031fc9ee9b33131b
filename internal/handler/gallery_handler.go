package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/pkg/response"
)

type galleryService interface {
	ListForAdmin(ctx context.Context) ([]dto.GalleryAdminItem, error)
	ListPublic(ctx context.Context) ([]dto.GalleryPublicItem, error)
	Create(ctx context.Context, req dto.GalleryRequest, actor *models.JWTClaims) (*models.ContentRecord, error)
	Update(ctx context.Context, id int64, req dto.GalleryRequest) (*models.ContentRecord, error)
	Delete(ctx context.Context, id int64) error
}

// GalleryHandler exposes the dedicated gallery endpoints.
type GalleryHandler struct {
	service galleryService
}

// NewGalleryHandler constructs a gallery handler.
func NewGalleryHandler(service galleryService) *GalleryHandler {
	return &GalleryHandler{service: service}
}

// ListForAdmin godoc
// @Summary List every gallery item
// @Tags Gallery
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.GalleryAdminItem
// @Router /gallery/admin/all [get]
func (h *GalleryHandler) ListForAdmin(c *gin.Context) {
	items, err := h.service.ListForAdmin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// ListPublic godoc
// @Summary List published gallery items
// @Tags Gallery
// @Produce json
// @Success 200 {array} dto.GalleryPublicItem
// @Router /gallery/public [get]
func (h *GalleryHandler) ListPublic(c *gin.Context) {
	items, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Create godoc
// @Summary Create a gallery item
// @Tags Gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GalleryRequest true "Gallery payload"
// @Success 201 {object} models.ContentRecord
// @Failure 400 {object} errors.Error
// @Router /gallery [post]
func (h *GalleryHandler) Create(c *gin.Context) {
	var req dto.GalleryRequest
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
// @Summary Replace a gallery item
// @Tags Gallery
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Gallery item ID"
// @Param payload body dto.GalleryRequest true "Gallery payload"
// @Success 200 {object} models.ContentRecord
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Router /gallery/{id} [put]
func (h *GalleryHandler) Update(c *gin.Context) {
	id, err := idParam(c, "content not found")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GalleryRequest
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
// @Summary Delete a gallery item
// @Tags Gallery
// @Security BearerAuth
// @Param id path int true "Gallery item ID"
// @Success 204
// @Failure 404 {object} errors.Error
// @Router /gallery/{id} [delete]
func (h *GalleryHandler) Delete(c *gin.Context) {
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
