package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// extractPDF extracts PDF text with a two-engine strategy: per-page text
// extraction first, content-stream extraction as fallback. Encryption and
// corruption are detected up front so they surface as their own error kinds
// instead of a generic extraction failure.
func (s *Service) extractPDF(ctx context.Context, path string, md *models.ExtractionMetadata) (string, error) {
	if err := s.probePDF(path, md); err != nil {
		return "", err
	}

	text, pagesErr := s.extractPDFPages(path, md)
	if pagesErr == nil && strings.TrimSpace(text) != "" {
		md.ExtractionMethod = "pdf"
		return text, nil
	}
	if pagesErr != nil {
		md.AddWarning(fmt.Sprintf("page-level extraction failed: %v", pagesErr))
		s.logger.Warn().Err(pagesErr).Str("path", path).Msg("Page-level PDF extraction failed, trying content streams")
	}

	text, contentErr := s.extractPDFContent(ctx, path, md)
	if contentErr != nil {
		return "", models.NewPDFExtractionError(path, errors.Join(pagesErr, contentErr))
	}

	md.ExtractionMethod = "pdf-fallback"
	return text, nil
}

// probePDF reads the document context to detect encryption, record the page
// count and count embedded images before any text extraction is attempted.
func (s *Service) probePDF(path string, md *models.ExtractionMetadata) error {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		low := strings.ToLower(err.Error())
		if strings.Contains(low, "encrypt") || strings.Contains(low, "password") {
			md.IsPasswordProtected = true
			return models.NewPasswordProtectedError(path)
		}
		return models.NewCorruptedFileError(path, err.Error())
	}

	if pdfCtx.Encrypt != nil {
		md.IsPasswordProtected = true
		return models.NewPasswordProtectedError(path)
	}

	md.PageCount = pdfCtx.PageCount
	s.countPDFImages(path, md)
	return nil
}

// countPDFImages extracts embedded images to a scratch directory and counts
// the results. Best effort only; failures never affect extraction.
func (s *Service) countPDFImages(path string, md *models.ExtractionMetadata) {
	outDir, err := os.MkdirTemp("", "chatbot-pdf-images-")
	if err != nil {
		return
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractImagesFile(path, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("Image extraction failed, skipping image count")
		return
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return
	}

	md.ImageCount = len(entries)
	md.HasImages = md.ImageCount > 0
}

// extractPDFPages extracts plain text page by page. A failing page is
// recorded as a warning and skipped rather than failing the document.
func (s *Service) extractPDFPages(path string, md *models.ExtractionMetadata) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	total := reader.NumPage()
	if md.PageCount == 0 {
		md.PageCount = total
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= total; pageNum++ {
		pageText, pageErr := readPDFPage(reader, pageNum)
		if pageErr != nil {
			md.AddWarning(fmt.Sprintf("page %d: %v", pageNum, pageErr))
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}

	return b.String(), nil
}

// readPDFPage isolates per-page panics so a malformed page cannot take down
// extraction of the remaining pages.
func readPDFPage(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("missing page object")
	}
	return page.GetPlainText(nil)
}

// extractPDFContent extracts raw page content streams as a last resort when
// per-page text extraction yields nothing.
func (s *Service) extractPDFContent(_ context.Context, path string, md *models.ExtractionMetadata) (string, error) {
	outDir, err := os.MkdirTemp("", "chatbot-pdf-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, model.NewDefaultConfiguration()); err != nil {
		return "", fmt.Errorf("failed to extract content streams: %w", err)
	}

	files, err := os.ReadDir(outDir)
	if err != nil {
		return "", err
	}

	pageTexts := make(map[int]string)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(file.Name(), "Content_page_%d", &pageNum); err != nil {
			continue
		}
		content, readErr := os.ReadFile(filepath.Join(outDir, file.Name()))
		if readErr == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= md.PageCount; pageNum++ {
		text, ok := pageTexts[pageNum]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no text content found in %d pages", md.PageCount)
	}

	return b.String(), nil
}
