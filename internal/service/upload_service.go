package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	appErrors "github.com/Nurdhuha/website-ukim/pkg/errors"
	"github.com/Nurdhuha/website-ukim/pkg/jobs"
	"github.com/Nurdhuha/website-ukim/pkg/media"
)

// ThumbnailJobType tags queue jobs that render an upload thumbnail.
const ThumbnailJobType = "thumbnail"

const thumbnailDir = "thumbs"

type uploadFileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// FileUpload carries an uploaded file and its declared metadata. The MIME
// type is always derived from Content.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// UploadServiceConfig holds size limits and the public URL prefix.
type UploadServiceConfig struct {
	PublicPath    string
	MaxImageBytes int64
	MaxPDFBytes   int64
}

type uploadPolicy struct {
	limit    int64
	mimes    []string
	rejected string
	message  string
}

// UploadService validates and stores media files.
type UploadService struct {
	storage    uploadFileStorage
	thumbnails jobEnqueuer
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        UploadServiceConfig
	policies   map[dto.UploadKind]uploadPolicy
	now        func() time.Time
}

// NewUploadService constructs the service. thumbnails may be nil to skip
// thumbnail generation.
func NewUploadService(storage uploadFileStorage, thumbnails jobEnqueuer, metrics *MetricsService, logger *zap.Logger, cfg UploadServiceConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PublicPath == "" {
		cfg.PublicPath = "/uploads"
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 2 * 1024 * 1024
	}
	if cfg.MaxPDFBytes <= 0 {
		cfg.MaxPDFBytes = 10 * 1024 * 1024
	}
	return &UploadService{
		storage:    storage,
		thumbnails: thumbnails,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
		policies: map[dto.UploadKind]uploadPolicy{
			dto.UploadKindImage: {
				limit:    cfg.MaxImageBytes,
				mimes:    []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
				rejected: "only JPEG, PNG, GIF or WEBP images are allowed",
				message:  "File uploaded successfully",
			},
			dto.UploadKindPDF: {
				limit:    cfg.MaxPDFBytes,
				mimes:    []string{"application/pdf"},
				rejected: "only PDF files are allowed",
				message:  "PDF uploaded successfully",
			},
		},
		now: time.Now,
	}
}

// Upload validates the file against the rules of kind and stores it under a
// generated name. The returned path is rooted at the public uploads prefix.
func (s *UploadService) Upload(ctx context.Context, kind dto.UploadKind, upload FileUpload) (*dto.UploadResponse, error) {
	resp, err := s.upload(kind, upload)
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
		if !appErrors.Is(err, appErrors.ErrUploadRejected) {
			outcome = "failed"
		}
	}
	s.metrics.RecordUpload(string(kind), outcome, upload.Size)
	return resp, err
}

func (s *UploadService) upload(kind dto.UploadKind, upload FileUpload) (*dto.UploadResponse, error) {
	policy, ok := s.policies[kind]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, "unsupported upload kind")
	}
	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, "no file uploaded")
	}
	if upload.Size > policy.limit {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("file exceeds the %s limit", formatBytes(policy.limit)))
	}

	detected, err := mimetype.DetectReader(upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect upload")
	}
	if !mimetype.EqualsAny(detected.String(), policy.mimes...) {
		return nil, appErrors.Clone(appErrors.ErrUploadRejected, policy.rejected)
	}

	if kind == dto.UploadKindImage {
		if err := rewind(upload.Content); err != nil {
			return nil, err
		}
		if _, _, err := media.Verify(upload.Content); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUploadRejected.Code, appErrors.ErrUploadRejected.Status, "image could not be decoded")
		}
	}

	if err := rewind(upload.Content); err != nil {
		return nil, err
	}
	name := s.generateFilename(detected.Extension())
	// A declared size can be smaller than the stream; never store past the limit.
	stored, err := s.storage.SaveStream(name, &limitedReader{r: upload.Content, remaining: policy.limit})
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			return nil, appErrors.Clone(appErrors.ErrUploadRejected, fmt.Sprintf("file exceeds the %s limit", formatBytes(policy.limit)))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
	}

	resp := &dto.UploadResponse{
		Message:  policy.message,
		FilePath: s.publicURL(stored),
	}
	if kind == dto.UploadKindImage && s.thumbnails != nil {
		err := s.thumbnails.TryEnqueue(jobs.Job{ID: stored, Type: ThumbnailJobType, Payload: stored})
		if err != nil {
			s.logger.Warn("thumbnail not scheduled", zap.String("file", stored), zap.Error(err))
		} else {
			resp.ThumbnailPath = s.publicURL(path.Join(thumbnailDir, media.ThumbnailName(stored)))
		}
	}
	s.logger.Info("upload stored", zap.String("kind", string(kind)), zap.String("file", stored), zap.Int64("size", upload.Size))
	return resp, nil
}

func (s *UploadService) publicURL(name string) string {
	return path.Join(s.cfg.PublicPath, name)
}

// generateFilename returns <unix-millis>-<random><ext>.
func (s *UploadService) generateFilename(ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), random, ext)
}

// ThumbnailHandler renders thumbnails for jobs scheduled by Upload.
func ThumbnailHandler(storage uploadFileStorage, width, height int, metrics *MetricsService) jobs.Handler {
	if width <= 0 {
		width = 480
	}
	if height <= 0 {
		height = 480
	}
	return func(ctx context.Context, job jobs.Job) error {
		name, ok := job.Payload.(string)
		if !ok || name == "" {
			return fmt.Errorf("thumbnail job %s: missing file name", job.ID)
		}
		src, err := storage.Open(name)
		if err != nil {
			metrics.RecordThumbnail(false)
			return err
		}
		defer src.Close()

		var buf bytes.Buffer
		if err := media.Thumbnail(src, &buf, name, width, height); err != nil {
			metrics.RecordThumbnail(false)
			return err
		}
		target := path.Join(thumbnailDir, media.ThumbnailName(name))
		_ = storage.Delete(target)
		if _, err := storage.SaveStream(target, &buf); err != nil {
			metrics.RecordThumbnail(false)
			return err
		}
		metrics.RecordThumbnail(true)
		return nil
	}
}

var errUploadTooLarge = errors.New("upload exceeds size limit")

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errUploadTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errUploadTooLarge
	}
	return n, err
}

func rewind(r io.Seeker) error {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	return nil
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
