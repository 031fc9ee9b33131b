package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/models"
	"github.com/Nurdhuha/website-ukim/internal/service"
	"github.com/Nurdhuha/website-ukim/pkg/response"
)

type eventService interface {
	List(ctx context.Context) ([]models.CalendarEvent, error)
	Get(ctx context.Context, id int64) (*models.CalendarEvent, error)
	Create(ctx context.Context, req dto.EventRequest, actor *models.JWTClaims) (*models.CalendarEvent, error)
	Update(ctx context.Context, id int64, req dto.EventRequest) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id int64) error
}

type eventExporter interface {
	Export(ctx context.Context, format dto.EventExportFormat) (*service.ExportFile, error)
}

// EventHandler exposes agenda endpoints.
type EventHandler struct {
	service  eventService
	exporter eventExporter
}

// NewEventHandler constructs an event handler.
func NewEventHandler(service eventService, exporter eventExporter) *EventHandler {
	return &EventHandler{service: service, exporter: exporter}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Success 200 {array} models.CalendarEvent
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events)
}

// Get godoc
// @Summary Get an event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.CalendarEvent
// @Failure 404 {object} errors.Error
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := idParam(c, "event not found")
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Create godoc
// @Summary Create an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.EventRequest true "Event payload"
// @Success 201 {object} models.CalendarEvent
// @Failure 400 {object} errors.Error
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidJSON(err))
		return
	}
	event, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Replace an event
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param payload body dto.EventRequest true "Event payload"
// @Success 200 {object} models.CalendarEvent
// @Failure 400 {object} errors.Error
// @Failure 404 {object} errors.Error
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := idParam(c, "event not found")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidJSON(err))
		return
	}
	event, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event)
}

// Delete godoc
// @Summary Delete an event
// @Tags Events
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 204
// @Failure 404 {object} errors.Error
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "event not found")
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

// Export godoc
// @Summary Download the agenda
// @Tags Events
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} errors.Error
// @Router /events/export [get]
func (h *EventHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), dto.EventExportFormat(c.DefaultQuery("format", string(dto.EventExportCSV))))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
