// -----------------------------------------------------------------------
// Vector Store Service - Chunk indexing and similarity search
// Persistent sqlite-vec backend with an in-memory keyword fallback
// -----------------------------------------------------------------------

package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
	"github.com/XkhldY/resume-chatbot/internal/services/chunker"
)

// Storage mode labels reported in stats and health.
const (
	storageSQLiteVec = "sqlite_vec"
	storageInMemory  = "in_memory"
)

// Service implements the VectorStore interface. The storage mode is chosen
// exactly once, on first use: the persistent backend when it opens cleanly,
// the in-memory fallback otherwise. The mode never changes mid-life; a
// backend failure after initialization surfaces as an operation error, not
// a silent downgrade.
type Service struct {
	cfg      *common.Config
	logger   arbor.ILogger
	chunker  *chunker.Chunker
	embedder interfaces.EmbeddingService

	mu          sync.Mutex
	initialized bool
	persistent  *sqliteVecStore
	memory      *memoryStore
}

// Compile-time interface assertion
var _ interfaces.VectorStore = (*Service)(nil)

// NewService creates a vector store service. No I/O happens here; the
// backend is opened lazily on first use.
func NewService(cfg *common.Config, embedder interfaces.EmbeddingService, logger arbor.ILogger) *Service {
	return &Service{
		cfg:      cfg,
		logger:   logger,
		chunker:  chunker.New(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap),
		embedder: embedder,
	}
}

// ensureInitialized selects the storage mode on first call. Subsequent calls
// are no-ops regardless of backend health.
func (s *Service) ensureInitialized(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return
	}
	s.initialized = true

	store, err := newSQLiteVecStore(ctx, s.cfg.Storage.VectorStore.Path, s.cfg.Embedding.Dimension)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("path", s.cfg.Storage.VectorStore.Path).
			Msg("Persistent vector store unavailable, falling back to in-memory storage")
		s.memory = newMemoryStore()
		return
	}

	s.logger.Info().
		Str("path", s.cfg.Storage.VectorStore.Path).
		Str("collection", s.cfg.Storage.VectorStore.CollectionName).
		Int("dimension", s.cfg.Embedding.Dimension).
		Msg("Persistent vector store initialized")
	s.persistent = store
}

// AddDocument chunks, embeds and indexes a document, replacing any chunks
// previously stored under the same document id.
func (s *Service) AddDocument(ctx context.Context, documentID, documentName, text string, metadata map[string]any) (bool, error) {
	s.ensureInitialized(ctx)

	chunks := s.chunker.ChunkText(text, documentID, documentName)
	if len(chunks) == 0 {
		s.logger.Debug().Str("document_id", documentID).Msg("No chunks produced, skipping document")
		return false, nil
	}

	for _, chunk := range chunks {
		for k, v := range metadata {
			chunk.Metadata[k] = v
		}
	}

	if s.persistent == nil {
		s.memory.replaceDocument(documentID, chunks)
		s.logger.Debug().
			Str("document_id", documentID).
			Int("chunks", len(chunks)).
			Msg("Document stored in memory")
		return true, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("failed to embed document %s: %w", documentID, err)
	}
	if len(embeddings) != len(chunks) {
		return false, fmt.Errorf("embedding count mismatch for document %s: %d chunks, %d embeddings", documentID, len(chunks), len(embeddings))
	}

	if err := s.persistent.replaceDocument(ctx, documentID, chunks, embeddings); err != nil {
		return false, fmt.Errorf("failed to index document %s: %w", documentID, err)
	}

	s.logger.Debug().
		Str("document_id", documentID).
		Int("chunks", len(chunks)).
		Msg("Document indexed")
	return true, nil
}

// SearchSimilar returns chunks relevant to the query, scored in [0,1] and
// filtered by the configured similarity threshold. Backend failures yield an
// empty result, never an error: retrieval degrades, it does not break chat.
func (s *Service) SearchSimilar(ctx context.Context, query string, nResults int, filterMetadata map[string]any) ([]models.SearchResult, error) {
	s.ensureInitialized(ctx)

	limit := nResults
	if limit <= 0 || limit > s.cfg.Search.MaxResults {
		limit = s.cfg.Search.MaxResults
	}

	if s.persistent == nil {
		return s.memory.search(query, limit, s.cfg.Search.SimilarityThreshold, filterMetadata), nil
	}

	queryEmbedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Query embedding failed, returning no results")
		return []models.SearchResult{}, nil
	}

	results, err := s.persistent.search(ctx, queryEmbedding, limit, s.cfg.Search.SimilarityThreshold, filterMetadata)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Similarity search failed, returning no results")
		return []models.SearchResult{}, nil
	}
	return results, nil
}

// DeleteDocument removes every chunk of a document. Deleting a document that
// was never indexed is not an error.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	s.ensureInitialized(ctx)

	if s.persistent == nil {
		s.memory.deleteDocument(documentID)
		return true, nil
	}

	if err := s.persistent.deleteDocument(ctx, documentID); err != nil {
		return false, fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}
	return true, nil
}

// CollectionStats reports storage mode and chunk count. Failures are folded
// into the stats record instead of returned.
func (s *Service) CollectionStats(ctx context.Context) *models.CollectionStats {
	s.ensureInitialized(ctx)

	stats := &models.CollectionStats{
		Status:         "ready",
		CollectionName: s.cfg.Storage.VectorStore.CollectionName,
	}

	if s.persistent == nil {
		stats.StorageType = storageInMemory
		stats.TotalChunks = s.memory.count()
		return stats
	}

	stats.StorageType = storageSQLiteVec
	count, err := s.persistent.count(ctx)
	if err != nil {
		stats.Status = "error"
		stats.Error = err.Error()
		return stats
	}
	stats.TotalChunks = count
	return stats
}

// HealthCheck probes the active backend: healthy when the persistent store
// answers, degraded in fallback mode, unhealthy when the probe fails.
func (s *Service) HealthCheck(ctx context.Context) *models.HealthStatus {
	s.ensureInitialized(ctx)

	if s.persistent == nil {
		return &models.HealthStatus{
			Status:      "degraded",
			Initialized: true,
			TotalChunks: s.memory.count(),
		}
	}

	count, err := s.persistent.count(ctx)
	if err != nil {
		return &models.HealthStatus{
			Status:            "unhealthy",
			PersistentBackend: true,
			Initialized:       true,
			Error:             err.Error(),
		}
	}

	return &models.HealthStatus{
		Status:            "healthy",
		PersistentBackend: true,
		Initialized:       true,
		TotalChunks:       count,
	}
}

// ClearCollection wipes all chunks in the active mode.
func (s *Service) ClearCollection(ctx context.Context) (bool, error) {
	s.ensureInitialized(ctx)

	if s.persistent == nil {
		s.memory.clear()
		return true, nil
	}

	if err := s.persistent.clear(ctx); err != nil {
		return false, fmt.Errorf("failed to clear collection: %w", err)
	}
	return true, nil
}

// Close releases the persistent backend if one was opened.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistent != nil {
		return s.persistent.close()
	}
	return nil
}
