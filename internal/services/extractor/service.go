// -----------------------------------------------------------------------
// Extractor Service - Extract text content from PDF, DOCX, TXT and MD files
// Dispatches by extension, normalizes output, records extraction metadata
// -----------------------------------------------------------------------

package extractor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

// Service implements the TextExtractor interface for all supported formats.
type Service struct {
	cfg    common.DocumentsConfig
	logger arbor.ILogger
	exts   map[string]bool
}

// Compile-time interface assertion
var _ interfaces.TextExtractor = (*Service)(nil)

// NewService creates a text extraction service for the configured formats.
func NewService(cfg common.DocumentsConfig, logger arbor.ILogger) *Service {
	exts := make(map[string]bool, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		exts[strings.ToLower(ext)] = true
	}

	return &Service{
		cfg:    cfg,
		logger: logger,
		exts:   exts,
	}
}

// SupportedExtensions returns the supported extensions in sorted order.
func (s *Service) SupportedExtensions() []string {
	out := make([]string, 0, len(s.exts))
	for ext := range s.exts {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// ExtractText extracts and normalizes the text content of a document.
// Any failure propagates as a typed processing error.
func (s *Service) ExtractText(ctx context.Context, path string) (string, error) {
	text, _, err := s.extract(ctx, path, false)
	return text, err
}

// ExtractWithMetadata extracts text and collects extraction metadata.
// Known failure kinds still propagate, but unexpected failures are recorded
// in metadata.Errors and an empty text is returned instead.
func (s *Service) ExtractWithMetadata(ctx context.Context, path string) (string, *models.ExtractionMetadata, error) {
	return s.extract(ctx, path, true)
}

func (s *Service) extract(ctx context.Context, path string, withMetadata bool) (text string, metadata *models.ExtractionMetadata, err error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	info, statErr := stat(path)
	if statErr != nil {
		return "", nil, statErr
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !s.exts[ext] {
		return "", nil, models.NewUnsupportedFileTypeError(path, ext, s.SupportedExtensions())
	}

	if max := s.cfg.MaxFileSizeBytes(); max > 0 && info.Size() > max {
		return "", nil, models.NewFileSizeError(path, info.Size(), max)
	}

	metadata = models.NewExtractionMetadata(path, info.Size())
	metadata.FileType = strings.TrimPrefix(ext, ".")

	start := time.Now()
	defer func() {
		metadata.ProcessingDuration = time.Since(start)
		if r := recover(); r != nil {
			cause := fmt.Errorf("extraction panic: %v", r)
			s.logger.Warn().Err(cause).Str("path", path).Msg("Recovered from extraction panic")
			if withMetadata {
				metadata.AddError(cause.Error())
				text, err = "", nil
				return
			}
			text, err = "", models.NewDocumentProcessingError(path, cause)
		}
	}()

	s.logger.Debug().
		Str("path", path).
		Str("file_type", metadata.FileType).
		Int64("file_size", info.Size()).
		Msg("Extracting document text")

	switch ext {
	case ".pdf":
		text, err = s.extractPDF(ctx, path, metadata)
	case ".docx":
		text, err = s.extractDOCX(ctx, path, metadata)
	case ".txt":
		text, err = s.extractPlainText(ctx, path, metadata)
	case ".md":
		text, err = s.extractMarkdown(ctx, path, metadata)
	default:
		return "", nil, models.NewUnsupportedFileTypeError(path, ext, s.SupportedExtensions())
	}

	if err != nil {
		var pe *models.ProcessingError
		if errors.As(err, &pe) {
			return "", metadata, err
		}
		if withMetadata {
			metadata.AddError(err.Error())
			return "", metadata, nil
		}
		return "", metadata, models.NewDocumentProcessingError(path, err)
	}

	text = normalizeText(text)

	if withMetadata {
		s.analyzeText(text, metadata)
	}

	s.logger.Debug().
		Str("path", path).
		Str("method", metadata.ExtractionMethod).
		Int("characters", len(text)).
		Msg("Document text extracted")

	return text, metadata, nil
}

// stat resolves the path to a regular file, mapping failures to the
// file-access error kind.
func stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, models.NewFileAccessError(path, err)
	}
	if info.IsDir() {
		return nil, models.NewFileAccessError(path, fmt.Errorf("path is a directory, not a file"))
	}
	return info, nil
}
