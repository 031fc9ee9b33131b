// Package media verifies uploaded images and renders thumbnails.
package media

import (
	"fmt"
	"image"
	"io"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Verify decodes r fully and reports the pixel dimensions. Files that carry an
// image MIME signature but do not decode are rejected by callers.
func Verify(r io.Reader) (width, height int, err error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ThumbnailName maps an upload name to the file name its thumbnail is written under.
// Formats imaging cannot encode (webp) fall back to PNG.
func ThumbnailName(name string) string {
	if _, err := imaging.FormatFromFilename(name); err == nil {
		return filepath.Base(name)
	}
	ext := filepath.Ext(name)
	return filepath.Base(name[:len(name)-len(ext)]) + ".png"
}

// Thumbnail writes a copy of src scaled to fit within width x height, honoring
// EXIF orientation. Images already inside the bounds are re-encoded unscaled.
func Thumbnail(src io.Reader, dst io.Writer, name string, width, height int) error {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decode image: %w", err)
	}

	var out image.Image = img
	b := img.Bounds()
	if b.Dx() > width || b.Dy() > height {
		out = imaging.Fit(img, width, height, imaging.Lanczos)
	}

	format, err := imaging.FormatFromFilename(ThumbnailName(name))
	if err != nil {
		return fmt.Errorf("resolve thumbnail format: %w", err)
	}
	if err := imaging.Encode(dst, out, format, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	return nil
}
