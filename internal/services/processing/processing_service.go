// -----------------------------------------------------------------------
// Processing Service - Full-corpus ingestion orchestration
// Scan, extract, index; one document's failure never aborts the batch
// -----------------------------------------------------------------------

package processing

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/sync/errgroup"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

// Service orchestrates corpus processing: scanning the documents folder,
// extracting text with metadata and indexing into the vector store.
type Service struct {
	cfg       *common.Config
	scanner   interfaces.DocumentScanner
	extractor interfaces.TextExtractor
	store     interfaces.VectorStore
	logger    arbor.ILogger
}

// NewService creates a processing service over the pipeline components.
func NewService(cfg *common.Config, scanner interfaces.DocumentScanner, extractor interfaces.TextExtractor, store interfaces.VectorStore, logger arbor.ILogger) *Service {
	return &Service{
		cfg:       cfg,
		scanner:   scanner,
		extractor: extractor,
		store:     store,
		logger:    logger,
	}
}

// ProcessAllDocuments processes every supported document in the folder with
// bounded concurrency. Extraction failures mark the document failed and the
// batch continues; cancellation stops the batch between documents and
// returns the partial result alongside the context error.
func (s *Service) ProcessAllDocuments(ctx context.Context) (*models.ProcessingResult, error) {
	result := &models.ProcessingResult{
		FileTypes:       map[string]*models.FileTypeStats{},
		FailedDocuments: []models.FailedDocument{},
		StartTime:       time.Now(),
	}
	defer func() { result.Duration = time.Since(result.StartTime) }()

	docs, err := s.scanner.ScanDocuments(ctx)
	if err != nil {
		return nil, err
	}
	result.TotalDocuments = len(docs)

	s.logger.Info().Int("documents", len(docs)).Msg("Starting corpus processing")

	concurrency := s.cfg.Processing.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		doc := doc
		g.Go(func() error {
			outcome := s.processOne(gctx, doc)

			mu.Lock()
			defer mu.Unlock()
			if outcome.failure != nil {
				result.FailedCount++
				result.FailedDocuments = append(result.FailedDocuments, *outcome.failure)
				return nil
			}
			result.ProcessedCount++
			result.TotalCharacters += outcome.metadata.CharacterCount
			result.TotalWords += outcome.metadata.WordCount

			stats := result.FileTypes[outcome.metadata.FileType]
			if stats == nil {
				stats = &models.FileTypeStats{}
				result.FileTypes[outcome.metadata.FileType] = stats
			}
			stats.Count++
			stats.Words += outcome.metadata.WordCount
			stats.Chars += outcome.metadata.CharacterCount
			return nil
		})
	}

	g.Wait()

	s.logger.Info().
		Int("processed", result.ProcessedCount).
		Int("failed", result.FailedCount).
		Int("total_words", result.TotalWords).
		Dur("duration", time.Since(result.StartTime)).
		Msg("Corpus processing finished")

	return result, ctx.Err()
}

type outcome struct {
	metadata *models.ExtractionMetadata
	failure  *models.FailedDocument
}

func (s *Service) processOne(ctx context.Context, doc *models.DocumentDescriptor) outcome {
	text, metadata, err := s.extractor.ExtractWithMetadata(ctx, doc.FilePath)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", doc.Filename).Msg("Document extraction failed")
		return outcome{failure: &models.FailedDocument{
			Filename: doc.Filename,
			Error:    err.Error(),
			Kind:     string(models.KindOf(err)),
		}}
	}

	if strings.TrimSpace(text) == "" {
		// Unexpected extraction failures land in metadata.Errors with an
		// empty text; otherwise the document genuinely has no content.
		failErr := models.NewEmptyDocumentError(doc.FilePath).Error()
		kind := models.KindEmptyDocument
		if metadata != nil && len(metadata.Errors) > 0 {
			failErr = metadata.Errors[0]
			kind = models.KindDocumentProcessing
		}
		s.logger.Warn().Str("file", doc.Filename).Str("reason", failErr).Msg("Document yielded no text")
		return outcome{failure: &models.FailedDocument{
			Filename: doc.Filename,
			Error:    failErr,
			Kind:     string(kind),
		}}
	}

	docMetadata := metadata.ToMap()
	docMetadata["filename"] = doc.Filename

	added, err := s.store.AddDocument(ctx, doc.ID, doc.Filename, text, docMetadata)
	if err != nil {
		// Indexing problems must not hide the extracted document stats, and
		// retrying next run is cheap; log and keep going.
		s.logger.Error().Err(err).Str("file", doc.Filename).Msg("Document indexing failed")
	} else if !added {
		s.logger.Debug().Str("file", doc.Filename).Msg("Document produced no indexable chunks")
	}

	return outcome{metadata: metadata}
}
