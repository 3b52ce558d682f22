// -----------------------------------------------------------------------
// Cache Service - Badger-backed embedding cache
// Keyed by (model, text) so unchanged chunks are never re-embedded
// -----------------------------------------------------------------------

package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// embeddingRecord is the persisted cache entry. DocumentID is indexed so a
// re-processed document can drop its entries in one query.
type embeddingRecord struct {
	Key        string
	Model      string
	DocumentID string `badgerhold:"index"`
	Embedding  []float32
	CreatedAt  time.Time
}

// Service implements the EmbeddingCache interface on BadgerDB.
type Service struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	hits   atomic.Int64
	misses atomic.Int64
}

// Compile-time interface assertion
var _ interfaces.EmbeddingCache = (*Service)(nil)

// NewService opens the cache store at the configured path.
func NewService(cfg common.CacheConfig, logger arbor.ILogger) (*Service, error) {
	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("Embedding cache initialized")
	return &Service{store: store, logger: logger}, nil
}

// Get returns the cached embedding for (model, text), or nil on a miss.
func (s *Service) Get(_ context.Context, model, text string) ([]float32, error) {
	var rec embeddingRecord
	err := s.store.Get(cacheKey(model, text), &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		s.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	s.hits.Add(1)
	return rec.Embedding, nil
}

// Set stores an embedding, tagged with the owning document when known.
func (s *Service) Set(_ context.Context, model, text, documentID string, embedding []float32) error {
	rec := embeddingRecord{
		Key:        cacheKey(model, text),
		Model:      model,
		DocumentID: documentID,
		Embedding:  embedding,
		CreatedAt:  time.Now(),
	}
	if err := s.store.Upsert(rec.Key, rec); err != nil {
		return fmt.Errorf("cache store failed: %w", err)
	}
	return nil
}

// InvalidateDocument removes every entry tagged with the document id.
func (s *Service) InvalidateDocument(_ context.Context, documentID string) error {
	err := s.store.DeleteMatching(&embeddingRecord{}, badgerhold.Where("DocumentID").Eq(documentID))
	if err != nil {
		return fmt.Errorf("cache invalidation failed for document %s: %w", documentID, err)
	}
	return nil
}

// Stats returns hit/miss counters and the stored entry count.
func (s *Service) Stats(_ context.Context) (*interfaces.CacheStats, error) {
	count, err := s.store.Count(&embeddingRecord{}, &badgerhold.Query{})
	if err != nil {
		return nil, fmt.Errorf("cache count failed: %w", err)
	}

	return &interfaces.CacheStats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Entries: int(count),
	}, nil
}

// Close releases the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

// cacheKey derives a stable key from model and text. Text goes through a
// hash so arbitrarily long chunk texts stay within key size limits.
func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return model + ":" + hex.EncodeToString(sum[:])
}
