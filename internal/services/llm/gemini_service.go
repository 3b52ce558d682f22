// -----------------------------------------------------------------------
// Gemini LLM Service - Chat completion and embeddings via the Gemini API
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// GeminiService implements the LLMService interface against the Gemini API.
type GeminiService struct {
	cfg       common.LLMConfig
	dimension int
	logger    arbor.ILogger
	client    *genai.Client
	timeout   time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini-backed LLM service.
func NewGeminiService(cfg *common.Config, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.LLM.GoogleAPIKey == "" {
		return nil, fmt.Errorf("Google API key is required for the Gemini provider (set GEMINI_API_KEY or llm.google_api_key)")
	}

	timeout, err := time.ParseDuration(cfg.LLM.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.LLM.GoogleAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	logger.Info().
		Str("chat_model", cfg.LLM.ChatModelName).
		Str("embed_model", cfg.LLM.EmbedModelName).
		Int("embed_dimension", cfg.Embedding.Dimension).
		Msg("Gemini LLM service initialized")

	return &GeminiService{
		cfg:       cfg.LLM,
		dimension: cfg.Embedding.Dimension,
		logger:    logger,
		client:    client,
		timeout:   timeout,
	}, nil
}

// Generate produces a completion for the prompt.
func (s *GeminiService) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.cfg.ChatModelName,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	// Iterate candidates until non-empty text is found.
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}
	return response.String(), nil
}

// Embed generates an embedding vector with the configured dimensionality.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty for embedding generation")
	}

	embeddings, err := s.embedContents(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for all texts in one API call.
func (s *GeminiService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return s.embedContents(ctx, texts)
}

func (s *GeminiService) embedContents(ctx context.Context, texts []string) ([][]float32, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.dimension)
	config := &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := s.client.Models.EmbedContent(timeoutCtx, s.cfg.EmbedModelName, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), embeddingCount(result))
	}

	embeddings := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != s.dimension {
			return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dimension, len(emb.Values))
		}
		embeddings[i] = emb.Values
	}
	return embeddings, nil
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}

// HealthCheck verifies the API answers with a cheap token-count call.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Models.CountTokens(timeoutCtx, s.cfg.ChatModelName,
		[]*genai.Content{genai.NewContentFromText("ping", genai.RoleUser)}, nil)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// Name returns the provider identifier.
func (s *GeminiService) Name() string {
	return string(common.ProviderGemini)
}
