package interfaces

import "context"

// EmbeddingService generates embedding vectors for texts, handling
// truncation, batching, caching and retry internally.
type EmbeddingService interface {
	// EmbedText generates an embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for all texts, preserving input order
	// and length. A text whose embedding cannot be generated after retries is
	// represented by a zero vector so batch alignment is never broken.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// IsAvailable reports whether the underlying provider responds.
	IsAvailable(ctx context.Context) bool
}
