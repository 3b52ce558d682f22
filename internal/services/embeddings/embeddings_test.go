package embeddings

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// stubLLM counts provider calls and can be set to fail every request, or
// only requests involving a specific text.
type stubLLM struct {
	embedCalls int
	batchCalls int
	fail       bool
	failText   string
	lastTexts  []string
}

var _ interfaces.LLMService = (*stubLLM)(nil)

func (s *stubLLM) Generate(_ context.Context, _ string, _ int, _ float64) (string, error) {
	return "", errors.New("not implemented")
}

func (s *stubLLM) Embed(_ context.Context, text string) ([]float32, error) {
	s.embedCalls++
	if s.fail || (s.failText != "" && text == s.failText) {
		return nil, errors.New("provider unavailable")
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (s *stubLLM) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batchCalls++
	s.lastTexts = texts
	if s.fail {
		return nil, errors.New("provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if s.failText != "" && t == s.failText {
			return nil, errors.New("provider rejected batch")
		}
		out[i] = []float32{float32(len(t)), 1, 0}
	}
	return out, nil
}

func (s *stubLLM) HealthCheck(_ context.Context) error {
	if s.fail {
		return errors.New("provider unavailable")
	}
	return nil
}

func (s *stubLLM) Name() string { return "stub" }

// memCache is a minimal in-process EmbeddingCache for tests.
type memCache struct {
	entries map[string][]float32
}

var _ interfaces.EmbeddingCache = (*memCache)(nil)

func newMemCache() *memCache { return &memCache{entries: map[string][]float32{}} }

func (c *memCache) Get(_ context.Context, model, text string) ([]float32, error) {
	return c.entries[model+"|"+text], nil
}

func (c *memCache) Set(_ context.Context, model, text, _ string, embedding []float32) error {
	c.entries[model+"|"+text] = embedding
	return nil
}

func (c *memCache) InvalidateDocument(_ context.Context, _ string) error { return nil }

func (c *memCache) Stats(_ context.Context) (*interfaces.CacheStats, error) {
	return &interfaces.CacheStats{Entries: len(c.entries)}, nil
}

func (c *memCache) Close() error { return nil }

func newTestService(t *testing.T, llm interfaces.LLMService, cache interfaces.EmbeddingCache) *Service {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Embedding.Dimension = 3
	cfg.Embedding.BatchSize = 2
	cfg.Embedding.MaxChars = 23
	cfg.Embedding.BatchInterval = "1ms"
	cfg.Embedding.MaxRetries = 1
	cfg.Embedding.RetryBackoff = "1ms"
	return NewService(cfg, llm, cache, common.GetLogger())
}

func TestEmbedText_UsesProvider(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, nil)

	got, err := svc.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 1, 0}, got)
	assert.Equal(t, 1, llm.embedCalls)
}

func TestEmbedText_CacheHitSkipsProvider(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, newMemCache())
	ctx := context.Background()

	first, err := svc.EmbedText(ctx, "hello")
	require.NoError(t, err)
	second, err := svc.EmbedText(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, llm.embedCalls, "second call must come from cache")
}

func TestEmbedBatch_PreservesOrderAndLength(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, nil)

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	got, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, got, 5)

	for i, text := range texts {
		assert.Equal(t, float32(len(text)), got[i][0])
	}
	// Batch size 2 over 5 texts means 3 provider calls.
	assert.Equal(t, 3, llm.batchCalls)
}

func TestEmbedBatch_FailureYieldsZeroVectors(t *testing.T) {
	llm := &stubLLM{fail: true}
	svc := newTestService(t, llm, nil)

	got, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	for _, v := range got {
		assert.Equal(t, []float32{0, 0, 0}, v)
	}
}

func TestEmbedBatch_BatchFailureSparesHealthySiblings(t *testing.T) {
	// Batch calls containing the bad text fail, but each text is still
	// embeddable on its own. Only the bad text may end up as a zero vector.
	llm := &stubLLM{failText: "bad"}
	svc := newTestService(t, llm, nil)

	got, err := svc.EmbedBatch(context.Background(), []string{"good", "bad"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []float32{4, 1, 0}, got[0], "healthy sibling keeps its real embedding")
	assert.Equal(t, []float32{0, 0, 0}, got[1])
}

func TestEmbedBatch_DoesNotMutateInput(t *testing.T) {
	llm := &stubLLM{}
	svc := newTestService(t, llm, nil)

	long := strings.Repeat("word ", 50)
	texts := []string{long, "short"}

	_, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.Equal(t, long, texts[0], "caller's slice must not see truncated texts")
}

func TestEmbedBatch_MixedCacheAndProvider(t *testing.T) {
	llm := &stubLLM{}
	cache := newMemCache()
	svc := newTestService(t, llm, cache)
	ctx := context.Background()

	_, err := svc.EmbedText(ctx, "cached text")
	require.NoError(t, err)

	got, err := svc.EmbedBatch(ctx, []string{"cached text", "fresh text"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"fresh text"}, llm.lastTexts, "only the cache miss reaches the provider")
}

func TestTruncateAtWordBoundary(t *testing.T) {
	assert.Equal(t, "short", truncateAtWordBoundary("short", 100))

	long := strings.Repeat("word ", 50)
	got := truncateAtWordBoundary(long, 23)
	assert.Equal(t, "word word word word", got)
	assert.LessOrEqual(t, len([]rune(got)), 23)

	// No whitespace inside the cap: hard cut.
	assert.Equal(t, "abcde", truncateAtWordBoundary("abcdefghij", 5))
}

func TestIsAvailable(t *testing.T) {
	svc := newTestService(t, &stubLLM{}, nil)
	assert.True(t, svc.IsAvailable(context.Background()))

	svc = newTestService(t, &stubLLM{fail: true}, nil)
	assert.False(t, svc.IsAvailable(context.Background()))
}
