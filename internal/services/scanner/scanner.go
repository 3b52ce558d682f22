// -----------------------------------------------------------------------
// Scanner Service - Enumerate the documents folder and manage uploads
// Recovers original display names from the upload naming convention
// -----------------------------------------------------------------------

package scanner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

// uploadNameRe matches the saved-upload convention
// YYYYMMDD_HHMMSS_{8-hex}_{original-name} and captures the original name.
var uploadNameRe = regexp.MustCompile(`^\d{8}_\d{6}_[a-f0-9]{8}_(.+)$`)

// unsafeFilenameRe matches characters removed during sanitization.
var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// Service implements the DocumentScanner interface over a documents folder.
type Service struct {
	cfg    common.DocumentsConfig
	logger arbor.ILogger
	exts   map[string]bool
}

// Compile-time interface assertion
var _ interfaces.DocumentScanner = (*Service)(nil)

// NewService creates a scanner over the configured documents folder.
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

// ScanDocuments lists supported files directly inside the documents root,
// skipping subdirectories. A missing root is an empty corpus, not an error.
func (s *Service) ScanDocuments(ctx context.Context) ([]*models.DocumentDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn().Str("dir", s.cfg.Dir).Msg("Documents folder does not exist")
			return []*models.DocumentDescriptor{}, nil
		}
		return nil, fmt.Errorf("failed to read documents folder %s: %w", s.cfg.Dir, err)
	}

	docs := make([]*models.DocumentDescriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !s.IsSupportedFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable entry")
			continue
		}

		docs = append(docs, &models.DocumentDescriptor{
			ID:        common.NewDocumentID(),
			Filename:  DisplayName(entry.Name()),
			FilePath:  filepath.Join(s.cfg.Dir, entry.Name()),
			Status:    models.StatusReady,
			CreatedAt: info.ModTime(),
		})
	}

	s.logger.Debug().Int("count", len(docs)).Str("dir", s.cfg.Dir).Msg("Scanned documents folder")
	return docs, nil
}

// IsSupportedFile reports whether the filename carries a supported extension.
func (s *Service) IsSupportedFile(filename string) bool {
	return s.exts[strings.ToLower(filepath.Ext(filename))]
}

// ValidateUpload checks an upload against size, extension and content-type
// rules, returning every violation rather than stopping at the first.
func (s *Service) ValidateUpload(filename string, content []byte) []models.UploadValidationError {
	var errs []models.UploadValidationError

	if strings.TrimSpace(filename) == "" {
		errs = append(errs, models.UploadValidationError{
			Filename:  filename,
			ErrorType: "filename",
			Message:   "filename is empty",
		})
		return errs
	}

	if !s.IsSupportedFile(filename) {
		errs = append(errs, models.UploadValidationError{
			Filename:  filename,
			ErrorType: "type",
			Message:   fmt.Sprintf("unsupported file extension %q", filepath.Ext(filename)),
		})
	}

	if max := s.cfg.MaxFileSizeBytes(); max > 0 && int64(len(content)) > max {
		errs = append(errs, models.UploadValidationError{
			Filename:  filename,
			ErrorType: "size",
			Message:   fmt.Sprintf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", len(content), max),
		})
	}

	if len(content) == 0 {
		errs = append(errs, models.UploadValidationError{
			Filename:  filename,
			ErrorType: "size",
			Message:   "file is empty",
		})
		return errs
	}

	if len(s.cfg.AllowedMIMETypes) > 0 {
		detected := mimetype.Detect(content)
		if !s.mimeAllowed(detected) {
			errs = append(errs, models.UploadValidationError{
				Filename:  filename,
				ErrorType: "type",
				Message:   fmt.Sprintf("detected content type %q is not allowed", detected.String()),
			})
		}
	}

	return errs
}

// mimeAllowed walks the detected type and its parents against the allow-list,
// so a text/plain allowance also accepts more specific text types.
func (s *Service) mimeAllowed(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range s.cfg.AllowedMIMETypes {
			if m.Is(allowed) {
				return true
			}
		}
	}
	return false
}

// SaveUpload validates and writes an upload under the unique naming
// convention YYYYMMDD_HHMMSS_{8-hex}_{sanitized-original-name}.
func (s *Service) SaveUpload(ctx context.Context, filename string, content io.Reader) (*models.UploadedFileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}

	if errs := s.ValidateUpload(filename, data); len(errs) > 0 {
		return nil, fmt.Errorf("upload %s rejected: %s", filename, errs[0].Message)
	}

	if err := os.MkdirAll(s.cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create documents folder: %w", err)
	}

	now := time.Now()
	saved := fmt.Sprintf("%s_%s_%s",
		now.Format("20060102_150405"),
		common.NewUploadID(),
		SanitizeFilename(filename),
	)

	path := filepath.Join(s.cfg.Dir, saved)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save upload %s: %w", filename, err)
	}

	s.logger.Info().
		Str("original", filename).
		Str("saved", saved).
		Int("bytes", len(data)).
		Msg("Upload saved")

	return &models.UploadedFileInfo{
		OriginalFilename: filename,
		SavedFilename:    saved,
		FileSize:         int64(len(data)),
		ContentType:      mimetype.Detect(data).String(),
		UploadTimestamp:  now,
		DocumentID:       common.NewDocumentID(),
	}, nil
}

// UploadStats counts files in the documents root by origin: saved uploads
// versus files placed there directly.
func (s *Service) UploadStats(ctx context.Context) (*models.UploadStats, error) {
	docs, err := s.ScanDocuments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.UploadStats{TotalFiles: len(docs)}
	for _, doc := range docs {
		if IsUploadedFile(filepath.Base(doc.FilePath)) {
			stats.UploadedFiles++
		} else {
			stats.OriginalFiles++
		}
	}
	return stats, nil
}

// IsUploadedFile reports whether a filename follows the upload convention.
func IsUploadedFile(filename string) bool {
	return uploadNameRe.MatchString(filename)
}

// DisplayName recovers the original filename from the upload convention.
// Names that do not match the convention are returned unchanged.
func DisplayName(filename string) string {
	if m := uploadNameRe.FindStringSubmatch(filename); m != nil {
		return m[1]
	}
	return filename
}

// SanitizeFilename strips path components and unsafe characters so the
// saved name is a single safe filesystem segment.
func SanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	safe := unsafeFilenameRe.ReplaceAllString(base, "_")
	safe = strings.Trim(safe, "._")
	if safe == "" {
		safe = "upload"
	}
	return safe
}
