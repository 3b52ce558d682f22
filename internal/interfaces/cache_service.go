package interfaces

import "context"

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// EmbeddingCache persists embedding vectors keyed by model and text so
// unchanged chunks are not re-embedded on every processing run.
type EmbeddingCache interface {
	// Get returns the cached embedding for (model, text), or nil on a miss.
	Get(ctx context.Context, model, text string) ([]float32, error)

	// Set stores an embedding, tagged with the owning document for invalidation.
	Set(ctx context.Context, model, text, documentID string, embedding []float32) error

	// InvalidateDocument removes all entries tagged with the document id.
	InvalidateDocument(ctx context.Context, documentID string) error

	// Stats returns hit/miss counters and entry count.
	Stats(ctx context.Context) (*CacheStats, error)

	// Close releases the underlying store.
	Close() error
}
