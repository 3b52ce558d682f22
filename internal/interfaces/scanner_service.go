package interfaces

import (
	"context"
	"io"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// DocumentScanner enumerates the documents folder and manages uploads into it.
type DocumentScanner interface {
	// ScanDocuments lists supported files directly inside the documents root.
	// A missing root yields an empty list, not an error.
	ScanDocuments(ctx context.Context) ([]*models.DocumentDescriptor, error)

	// IsSupportedFile reports whether a filename has a supported extension.
	IsSupportedFile(filename string) bool

	// ValidateUpload checks size, extension and sniffed MIME type of an upload.
	ValidateUpload(filename string, content []byte) []models.UploadValidationError

	// SaveUpload writes an upload under the unique naming convention
	// YYYYMMDD_HHMMSS_{8-hex}_{original-name} and returns its file info.
	SaveUpload(ctx context.Context, filename string, content io.Reader) (*models.UploadedFileInfo, error)

	// UploadStats counts uploaded vs. original files in the documents root.
	UploadStats(ctx context.Context) (*models.UploadStats, error)
}
