package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/internal/service"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
	"github.com/Nurdhuha/website-ukim/pkg/response"
)

// multipart framing allowance on top of the file limit
const multipartOverhead = 1 << 20

type uploadService interface {
	Upload(ctx context.Context, kind dto.UploadKind, upload service.FileUpload) (*dto.UploadResponse, error)
}

// UploadLimits bounds request bodies per upload kind.
type UploadLimits struct {
	MaxImageBytes int64
	MaxPDFBytes   int64
}

// UploadHandler accepts media uploads.
type UploadHandler struct {
	service uploadService
	limits  UploadLimits
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(service uploadService, limits UploadLimits) *UploadHandler {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = 2 * 1024 * 1024
	}
	if limits.MaxPDFBytes <= 0 {
		limits.MaxPDFBytes = 10 * 1024 * 1024
	}
	return &UploadHandler{service: service, limits: limits}
}

// Image godoc
// @Summary Upload an image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JPEG, PNG, GIF or WEBP image up to 2 MB"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} errors.Error
// @Failure 429 {object} errors.Error
// @Router /upload [post]
func (h *UploadHandler) Image(c *gin.Context) {
	h.handle(c, dto.UploadKindImage, "file", h.limits.MaxImageBytes)
}

// PDF godoc
// @Summary Upload a PDF document
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param pdf formData file true "PDF up to 10 MB"
// @Success 200 {object} dto.UploadResponse
// @Failure 400 {object} errors.Error
// @Failure 429 {object} errors.Error
// @Router /upload-pdf [post]
func (h *UploadHandler) PDF(c *gin.Context) {
	h.handle(c, dto.UploadKindPDF, "pdf", h.limits.MaxPDFBytes)
}

func (h *UploadHandler) handle(c *gin.Context, kind dto.UploadKind, field string, limit int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fileHeader, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("file exceeds the %d MB limit", limit/(1024*1024))))
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrUploadRejected, "no file uploaded"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	reader, ok := src.(io.ReadSeeker)
	if !ok {
		buf, readErr := io.ReadAll(src)
		if readErr != nil {
			response.Error(c, appErrors.Wrap(readErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		reader = bytes.NewReader(buf)
	}

	resp, err := h.service.Upload(c.Request.Context(), kind, service.FileUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  reader,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp)
}
