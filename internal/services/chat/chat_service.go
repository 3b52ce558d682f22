// -----------------------------------------------------------------------
// Chat Service - Retrieval-augmented answering over the document corpus
// -----------------------------------------------------------------------

package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

const answerPrompt = `You are a helpful assistant answering questions about a set of documents.
Use only the context below. If the context does not contain the answer, say so.

Context:
%s

Question: %s

Answer:`

// Answer is a chat response with the retrieved chunks that grounded it.
type Answer struct {
	Text    string                `json:"text"`
	Sources []models.SearchResult `json:"sources"`
}

// Service answers questions by retrieving relevant chunks and prompting the
// chat provider with them.
type Service struct {
	cfg    common.ChatConfig
	store  interfaces.VectorStore
	llm    interfaces.LLMService
	logger arbor.ILogger
}

// NewService creates a chat service over the vector store and chat provider.
func NewService(cfg *common.Config, store interfaces.VectorStore, llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		cfg:    cfg.Chat,
		store:  store,
		llm:    llm,
		logger: logger,
	}
}

// Ask retrieves context for the question and generates an answer. Retrieval
// returning nothing is not an error; the provider is told there is no
// matching context.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	results, err := s.store.SearchSimilar(ctx, question, s.cfg.MaxContextChunks, nil)
	if err != nil {
		return nil, fmt.Errorf("context retrieval failed: %w", err)
	}

	prompt := fmt.Sprintf(answerPrompt, BuildContext(results), question)

	s.logger.Debug().
		Int("context_chunks", len(results)).
		Int("prompt_length", len(prompt)).
		Msg("Generating chat answer")

	text, err := s.llm.Generate(ctx, prompt, s.cfg.MaxTokens, s.cfg.Temperature)
	if err != nil {
		return nil, fmt.Errorf("answer generation failed: %w", err)
	}

	return &Answer{
		Text:    strings.TrimSpace(text),
		Sources: results,
	}, nil
}

// BuildContext renders retrieved chunks as attributed blocks, one per chunk,
// in retrieval order.
func BuildContext(results []models.SearchResult) string {
	if len(results) == 0 {
		return "(no matching documents)"
	}

	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fmt.Sprintf("From %s: %s", r.DocumentName, r.Text))
	}
	return b.String()
}
