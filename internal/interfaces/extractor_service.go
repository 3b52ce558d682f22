package interfaces

import (
	"context"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// TextExtractor extracts plain text from supported document formats
// (PDF, DOCX, TXT, Markdown) with normalization and metadata analysis.
type TextExtractor interface {
	// ExtractText extracts text from a single file, propagating the specific
	// extraction error kind to the caller. Unexpected failures surface as a
	// generic document-processing error so integrity probes get a hard signal.
	ExtractText(ctx context.Context, filePath string) (string, error)

	// ExtractWithMetadata extracts text and a full metadata record. Unexpected
	// failures are recorded in metadata.Errors and an empty string is returned
	// instead of an error, so bulk statistics callers never lose a whole batch
	// to one file.
	ExtractWithMetadata(ctx context.Context, filePath string) (string, *models.ExtractionMetadata, error)

	// SupportedExtensions returns the lower-case extension allow-list.
	SupportedExtensions() []string
}
