package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// NewService creates the chat provider selected by configuration.
func NewService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch cfg.LLM.DefaultProvider {
	case common.ProviderClaude:
		return NewClaudeService(cfg, logger)
	case common.ProviderGemini, "":
		return NewGeminiService(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: %s, %s)",
			cfg.LLM.DefaultProvider, common.ProviderGemini, common.ProviderClaude)
	}
}

// NewEmbeddingProvider returns the provider used for embeddings. Claude has
// no embedding endpoint, so a Claude chat setup still embeds through Gemini
// when a Google API key is configured.
func NewEmbeddingProvider(cfg *common.Config, chat interfaces.LLMService, logger arbor.ILogger) (interfaces.LLMService, error) {
	if cfg.LLM.DefaultProvider == common.ProviderClaude {
		if cfg.LLM.GoogleAPIKey == "" {
			return nil, fmt.Errorf("embeddings require a Google API key when the chat provider is %s", common.ProviderClaude)
		}
		return NewGeminiService(cfg, logger)
	}
	return chat, nil
}
