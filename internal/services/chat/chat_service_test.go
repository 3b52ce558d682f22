package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/models"
)

type stubStore struct {
	results   []models.SearchResult
	lastQuery string
	lastLimit int
}

var _ interfaces.VectorStore = (*stubStore)(nil)

func (s *stubStore) AddDocument(_ context.Context, _, _, _ string, _ map[string]any) (bool, error) {
	return true, nil
}

func (s *stubStore) SearchSimilar(_ context.Context, query string, nResults int, _ map[string]any) ([]models.SearchResult, error) {
	s.lastQuery = query
	s.lastLimit = nResults
	return s.results, nil
}

func (s *stubStore) DeleteDocument(_ context.Context, _ string) (bool, error) { return true, nil }

func (s *stubStore) CollectionStats(_ context.Context) *models.CollectionStats {
	return &models.CollectionStats{}
}

func (s *stubStore) HealthCheck(_ context.Context) *models.HealthStatus {
	return &models.HealthStatus{}
}

func (s *stubStore) ClearCollection(_ context.Context) (bool, error) { return true, nil }

func (s *stubStore) Close() error { return nil }

type stubChatLLM struct {
	lastPrompt string
	answer     string
	fail       bool
}

var _ interfaces.LLMService = (*stubChatLLM)(nil)

func (s *stubChatLLM) Generate(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	s.lastPrompt = prompt
	if s.fail {
		return "", errors.New("provider unavailable")
	}
	return s.answer, nil
}

func (s *stubChatLLM) Embed(_ context.Context, _ string) ([]float32, error) { return nil, nil }

func (s *stubChatLLM) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, nil
}

func (s *stubChatLLM) HealthCheck(_ context.Context) error { return nil }

func (s *stubChatLLM) Name() string { return "stub" }

func TestAsk_BuildsAttributedContext(t *testing.T) {
	store := &stubStore{results: []models.SearchResult{
		{DocumentName: "resume.pdf", Text: "Ten years of Go experience.", Similarity: 0.9},
		{DocumentName: "cover.txt", Text: "Available from March.", Similarity: 0.8},
	}}
	llm := &stubChatLLM{answer: "The candidate has ten years of Go experience."}
	svc := NewService(common.NewDefaultConfig(), store, llm, common.GetLogger())

	answer, err := svc.Ask(context.Background(), "How much Go experience?")
	require.NoError(t, err)

	assert.Equal(t, "The candidate has ten years of Go experience.", answer.Text)
	assert.Len(t, answer.Sources, 2)

	assert.Contains(t, llm.lastPrompt, "From resume.pdf: Ten years of Go experience.")
	assert.Contains(t, llm.lastPrompt, "From cover.txt: Available from March.")
	assert.Contains(t, llm.lastPrompt, "Question: How much Go experience?")
	// Context blocks appear in retrieval order.
	assert.Less(t,
		strings.Index(llm.lastPrompt, "From resume.pdf"),
		strings.Index(llm.lastPrompt, "From cover.txt"))

	assert.Equal(t, "How much Go experience?", store.lastQuery)
	assert.Equal(t, common.NewDefaultConfig().Chat.MaxContextChunks, store.lastLimit)
}

func TestAsk_NoMatchesStillAnswers(t *testing.T) {
	store := &stubStore{}
	llm := &stubChatLLM{answer: "I don't have that information."}
	svc := NewService(common.NewDefaultConfig(), store, llm, common.GetLogger())

	answer, err := svc.Ask(context.Background(), "Something unrelated?")
	require.NoError(t, err)

	assert.Contains(t, llm.lastPrompt, "(no matching documents)")
	assert.Empty(t, answer.Sources)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := NewService(common.NewDefaultConfig(), &stubStore{}, &stubChatLLM{}, common.GetLogger())

	_, err := svc.Ask(context.Background(), "   ")
	require.Error(t, err)
}

func TestAsk_ProviderFailure(t *testing.T) {
	svc := NewService(common.NewDefaultConfig(), &stubStore{}, &stubChatLLM{fail: true}, common.GetLogger())

	_, err := svc.Ask(context.Background(), "question")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answer generation failed")
}
