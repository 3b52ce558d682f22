package interfaces

import (
	"context"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// VectorStore stores document chunks with embeddings and answers similarity
// queries. Implementations choose a storage mode once at initialization:
// a persistent vector index when available, or an in-memory fallback —
// both behind this single contract.
type VectorStore interface {
	// AddDocument chunks the text, embeds every chunk, merges metadata and
	// indexes the result. Returns false (no error) for empty text. Indexing
	// failures are returned, never swallowed: silent data loss during
	// ingestion is unacceptable.
	AddDocument(ctx context.Context, documentID, documentName, text string, metadata map[string]any) (bool, error)

	// SearchSimilar returns up to nResults chunks relevant to the query with
	// similarity scores in [0,1]. Results below the configured similarity
	// threshold are dropped by the store, not the caller. Returns an empty
	// slice (never an error) on no matches or backend failure.
	SearchSimilar(ctx context.Context, query string, nResults int, filterMetadata map[string]any) ([]models.SearchResult, error)

	// DeleteDocument removes all chunks belonging to a document. Idempotent:
	// deleting an absent document still returns true.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// CollectionStats reports mode and chunk count; never returns an error
	// (failures are reported inside the stats record).
	CollectionStats(ctx context.Context) *models.CollectionStats

	// HealthCheck probes the active backend.
	HealthCheck(ctx context.Context) *models.HealthStatus

	// ClearCollection wipes all data in the active mode.
	ClearCollection(ctx context.Context) (bool, error)

	// Close releases backend resources.
	Close() error
}
