package interfaces

import "context"

// LLMService defines the contract for text-completion and embedding
// providers. Implementations wrap cloud APIs (Gemini, Claude); the core
// treats them as black boxes accessed over the network.
type LLMService interface {
	// Generate produces a completion for the prompt.
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)

	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// HealthCheck verifies the provider is reachable and configured.
	HealthCheck(ctx context.Context) error

	// Name returns the provider identifier ("gemini", "claude").
	Name() string
}
