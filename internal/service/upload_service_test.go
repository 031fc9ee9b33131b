package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nurdhuha/website-ukim/internal/dto"
	"github.com/Nurdhuha/website-ukim/pkg/jobs"
	"github.com/Nurdhuha/website-ukim/pkg/storage"
)

type recordingQueue struct {
	jobs []jobs.Job
	err  error
}

func (q *recordingQueue) TryEnqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func noisePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: uint8(rng.Intn(256))})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestUploadService(t *testing.T, queue jobEnqueuer) (*UploadService, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewUploadService(store, queue, NewMetricsService(), nil, UploadServiceConfig{}), store
}

func fileUpload(name string, data []byte) FileUpload {
	return FileUpload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func TestUploadImageAccepted(t *testing.T) {
	queue := &recordingQueue{}
	svc, store := newTestUploadService(t, queue)
	data := noisePNG(t, 600, 600)
	require.Greater(t, len(data), 1024*1024)
	require.Less(t, len(data), 2*1024*1024)

	resp, err := svc.Upload(context.Background(), dto.UploadKindImage, fileUpload("foto.png", data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.FilePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(resp.FilePath, ".png"))
	assert.Equal(t, "File uploaded successfully", resp.Message)

	name := strings.TrimPrefix(resp.FilePath, "/uploads/")
	assert.Regexp(t, `^\d{13}-[0-9a-f]{12}\.png$`, name)
	stored, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, data, stored)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, name, queue.jobs[0].Payload)
	assert.Equal(t, "/uploads/thumbs/"+name, resp.ThumbnailPath)
}

func TestUploadImageRejected(t *testing.T) {
	svc, store := newTestUploadService(t, nil)
	ctx := context.Background()

	big := FileUpload{Filename: "big.png", Size: 3 * 1024 * 1024, Content: bytes.NewReader(noisePNG(t, 8, 8))}
	_, err := svc.Upload(ctx, dto.UploadKindImage, big)
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, "UPLOAD_REJECTED", appErr.Code)
	assert.Equal(t, "file exceeds the 2 MB limit", appErr.Message)

	_, err = svc.Upload(ctx, dto.UploadKindImage, fileUpload("notes.png", []byte("just some text pretending")))
	appErr = requireAppError(t, err, 400)
	assert.Equal(t, "only JPEG, PNG, GIF or WEBP images are allowed", appErr.Message)

	corrupt := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	_, err = svc.Upload(ctx, dto.UploadKindImage, fileUpload("broken.png", corrupt))
	appErr = requireAppError(t, err, 400)
	assert.Equal(t, "image could not be decoded", appErr.Message)

	_, err = svc.Upload(ctx, dto.UploadKindImage, FileUpload{})
	requireAppError(t, err, 400)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadStreamLongerThanDeclaredSize(t *testing.T) {
	svc, store := newTestUploadService(t, nil)
	svc.policies[dto.UploadKindPDF] = uploadPolicy{limit: 32, mimes: []string{"application/pdf"}, rejected: "only PDF files are allowed"}
	data := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 64)...)

	_, err := svc.Upload(context.Background(), dto.UploadKindPDF, FileUpload{Filename: "a.pdf", Size: 10, Content: bytes.NewReader(data)})
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, "UPLOAD_REJECTED", appErr.Code)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadPDF(t *testing.T) {
	queue := &recordingQueue{}
	svc, _ := newTestUploadService(t, queue)
	data := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

	resp, err := svc.Upload(context.Background(), dto.UploadKindPDF, fileUpload("silabus.pdf", data))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.FilePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(resp.FilePath, ".pdf"))
	assert.Equal(t, "PDF uploaded successfully", resp.Message)
	assert.Empty(t, queue.jobs)

	_, err = svc.Upload(context.Background(), dto.UploadKindPDF, fileUpload("foto.pdf", noisePNG(t, 4, 4)))
	appErr := requireAppError(t, err, 400)
	assert.Equal(t, "only PDF files are allowed", appErr.Message)
}

func TestUploadSucceedsWhenThumbnailQueueFull(t *testing.T) {
	svc, _ := newTestUploadService(t, &recordingQueue{err: jobs.ErrQueueFull})
	resp, err := svc.Upload(context.Background(), dto.UploadKindImage, fileUpload("a.png", noisePNG(t, 8, 8)))
	require.NoError(t, err)
	assert.Empty(t, resp.ThumbnailPath)
}

func TestThumbnailHandlerWritesThumbnail(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.SaveStream("big.png", bytes.NewReader(noisePNG(t, 64, 32)))
	require.NoError(t, err)

	handler := ThumbnailHandler(store, 16, 16, nil)
	require.NoError(t, handler(context.Background(), jobs.Job{ID: "big.png", Payload: "big.png"}))

	f, err := store.Open("thumbs/big.png")
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)

	require.Error(t, handler(context.Background(), jobs.Job{ID: "x", Payload: 42}))
}

func TestUploadNameUsesDetectedExtension(t *testing.T) {
	svc, _ := newTestUploadService(t, nil)

	resp, err := svc.Upload(context.Background(), dto.UploadKindImage, fileUpload("poster.jpeg", noisePNG(t, 8, 8)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.FilePath, ".png"))
	assert.NotContains(t, resp.FilePath, "poster")
}
