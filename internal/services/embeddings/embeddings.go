// -----------------------------------------------------------------------
// Embeddings Service - Chunk and query embedding generation
// Truncation, batching, rate limiting, retry and cache consult
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
)

// Service implements the EmbeddingService interface over an LLM provider,
// with an optional persistent cache in front of it.
type Service struct {
	cfg     common.EmbeddingConfig
	llm     interfaces.LLMService
	cache   interfaces.EmbeddingCache // nil when caching is disabled
	logger  arbor.ILogger
	limiter *rate.Limiter
	backoff time.Duration
	model   string
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates an embedding service. The cache may be nil; every
// lookup then falls through to the provider.
func NewService(cfg *common.Config, llm interfaces.LLMService, embCache interfaces.EmbeddingCache, logger arbor.ILogger) *Service {
	interval, err := time.ParseDuration(cfg.Embedding.BatchInterval)
	if err != nil || interval <= 0 {
		interval = 200 * time.Millisecond
	}
	backoff, err := time.ParseDuration(cfg.Embedding.RetryBackoff)
	if err != nil || backoff <= 0 {
		backoff = time.Second
	}

	return &Service{
		cfg:     cfg.Embedding,
		llm:     llm,
		cache:   embCache,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		backoff: backoff,
		model:   cfg.LLM.EmbedModelName,
	}
}

// EmbedText generates an embedding for one text, consulting the cache first.
func (s *Service) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = truncateAtWordBoundary(text, s.cfg.MaxChars)

	if cached := s.cacheGet(ctx, text); cached != nil {
		return cached, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	embedding, err := s.embedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, text, embedding)
	return embedding, nil
}

// EmbedBatch embeds all texts in input order. Texts are processed in batches
// with a minimum interval between provider calls. A text that still fails
// after retries becomes a zero vector so alignment with chunks is preserved.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))

	// Cache pass: collect only the texts that actually need the provider.
	// Truncation stays local so the caller's slice is never modified.
	truncated := make([]string, len(texts))
	var pendingIdx []int
	for i, text := range texts {
		text = truncateAtWordBoundary(text, s.cfg.MaxChars)
		truncated[i] = text
		if cached := s.cacheGet(ctx, text); cached != nil {
			results[i] = cached
			continue
		}
		pendingIdx = append(pendingIdx, i)
	}

	batchSize := s.cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	failed := 0
	for start := 0; start < len(pendingIdx); start += batchSize {
		end := start + batchSize
		if end > len(pendingIdx) {
			end = len(pendingIdx)
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		batch := pendingIdx[start:end]
		batchTexts := make([]string, len(batch))
		for j, idx := range batch {
			batchTexts[j] = truncated[idx]
		}

		embeddings, err := s.embedBatchWithRetry(ctx, batchTexts)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// One poisoned text must not take its batch siblings down with
			// it; retry each text alone and zero-vector only the losers.
			s.logger.Warn().Err(err).
				Int("batch_size", len(batch)).
				Msg("Batch embedding failed after retries, retrying texts individually")
			n, err := s.embedIndividually(ctx, batch, truncated, results)
			if err != nil {
				return nil, err
			}
			failed += n
			continue
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("provider returned %d embeddings for %d texts", len(embeddings), len(batch))
		}

		for j, idx := range batch {
			results[idx] = embeddings[j]
			s.cachePut(ctx, truncated[idx], embeddings[j])
		}
	}

	if failed > 0 {
		s.logger.Warn().
			Int("failed", failed).
			Int("total", len(texts)).
			Msg("Some texts embedded as zero vectors")
	}

	return results, nil
}

// Dimension returns the configured embedding dimension.
func (s *Service) Dimension() int {
	return s.cfg.Dimension
}

// IsAvailable reports whether the provider answers a health probe.
func (s *Service) IsAvailable(ctx context.Context) bool {
	return s.llm.HealthCheck(ctx) == nil
}

// embedIndividually is the recovery path after a batch call exhausts its
// retries: every text in the batch is retried on its own, and only texts
// that still fail become zero-vector placeholders. Returns the number of
// texts that ended up as placeholders.
func (s *Service) embedIndividually(ctx context.Context, batch []int, truncated []string, results [][]float32) (int, error) {
	failed := 0
	for _, idx := range batch {
		if err := s.limiter.Wait(ctx); err != nil {
			return failed, err
		}

		embedding, err := s.embedWithRetry(ctx, truncated[idx])
		if err != nil {
			if ctx.Err() != nil {
				return failed, ctx.Err()
			}
			s.logger.Warn().Err(err).Msg("Text embedding failed after retries, inserting zero vector")
			results[idx] = make([]float32, s.cfg.Dimension)
			failed++
			continue
		}

		results[idx] = embedding
		s.cachePut(ctx, truncated[idx], embedding)
	}
	return failed, nil
}

func (s *Service) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	backoff := s.backoff
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		embedding, err := s.llm.Embed(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		s.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Embedding request failed")
	}
	return nil, fmt.Errorf("embedding failed after %d attempts: %w", s.cfg.MaxRetries+1, lastErr)
}

func (s *Service) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	backoff := s.backoff
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		embeddings, err := s.llm.EmbedBatch(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err
		s.logger.Warn().Err(err).Int("attempt", attempt+1).Int("batch_size", len(texts)).Msg("Batch embedding request failed")
	}
	return nil, lastErr
}

// cacheGet is a best-effort lookup; cache failures degrade to a miss.
func (s *Service) cacheGet(ctx context.Context, text string) []float32 {
	if s.cache == nil {
		return nil
	}
	embedding, err := s.cache.Get(ctx, s.model, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Embedding cache lookup failed")
		return nil
	}
	return embedding
}

// cachePut is best effort; a failed write never fails the embedding.
func (s *Service) cachePut(ctx context.Context, text string, embedding []float32) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.model, text, "", embedding); err != nil {
		s.logger.Warn().Err(err).Msg("Embedding cache store failed")
	}
}

// truncateAtWordBoundary caps text at maxChars characters, cutting back to
// the last whitespace so no word is split mid-way.
func truncateAtWordBoundary(text string, maxChars int) string {
	if maxChars <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	cut := string(runes[:maxChars])
	if idx := strings.LastIndexAny(cut, " \t\n"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}
