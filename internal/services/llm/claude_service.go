// -----------------------------------------------------------------------
// Claude LLM Service - Chat completion via the Anthropic API
// Claude exposes no embedding endpoint; embedding calls report that
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// ClaudeService implements the LLMService interface against the Anthropic API.
type ClaudeService struct {
	cfg     common.LLMConfig
	logger  arbor.ILogger
	client  anthropic.Client
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*ClaudeService)(nil)

// NewClaudeService creates a Claude-backed LLM service.
func NewClaudeService(cfg *common.Config, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.LLM.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required for the Claude provider (set ANTHROPIC_API_KEY or llm.anthropic_api_key)")
	}

	timeout, err := time.ParseDuration(cfg.LLM.Timeout)
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	logger.Info().
		Str("chat_model", cfg.LLM.ChatModelName).
		Msg("Claude LLM service initialized")

	return &ClaudeService{
		cfg:     cfg.LLM,
		logger:  logger,
		client:  anthropic.NewClient(option.WithAPIKey(cfg.LLM.AnthropicAPIKey)),
		timeout: timeout,
	}, nil
}

// Generate produces a completion for the prompt.
func (s *ClaudeService) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	message, err := s.client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.cfg.ChatModelName),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat generation failed: %w", err)
	}

	var response strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("no response generated from chat model")
	}
	return response.String(), nil
}

// Embed reports that Claude has no embedding endpoint.
func (s *ClaudeService) Embed(_ context.Context, _ string) ([]float32, error) {
	return nil, fmt.Errorf("provider %q does not support embeddings", s.Name())
}

// EmbedBatch reports that Claude has no embedding endpoint.
func (s *ClaudeService) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, fmt.Errorf("provider %q does not support embeddings", s.Name())
}

// HealthCheck verifies the API key with a model listing call.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Models.List(timeoutCtx, anthropic.ModelListParams{
		Limit: anthropic.Int(1),
	})
	if err != nil {
		return fmt.Errorf("claude health check failed: %w", err)
	}
	return nil
}

// Name returns the provider identifier.
func (s *ClaudeService) Name() string {
	return string(common.ProviderClaude)
}
