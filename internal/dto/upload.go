package dto

// UploadKind distinguishes the two upload variants.
type UploadKind string

const (
	UploadKindImage UploadKind = "image"
	UploadKindPDF   UploadKind = "pdf"
)

// UploadResponse is returned after a successful upload. FilePath is always
// rooted at the public uploads path.
type UploadResponse struct {
	Message       string `json:"message"`
	FilePath      string `json:"filePath"`
	ThumbnailPath string `json:"thumbnailPath,omitempty"`
}
