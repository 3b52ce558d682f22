package vectorstore

import (
	"strings"
	"sync"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// memoryKeywordScore is the fixed similarity assigned to keyword matches in
// fallback mode. Keyword hits have no geometric meaning, so every match gets
// the same score above the default threshold.
const memoryKeywordScore = 0.8

// memoryStore is the fallback backend: chunks held in process memory and
// searched by case-insensitive substring match. Contents vanish on restart.
type memoryStore struct {
	mu     sync.RWMutex
	chunks []*models.Chunk
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) replaceDocument(documentID string, chunks []*models.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(documentID)
	m.chunks = append(m.chunks, chunks...)
}

func (m *memoryStore) deleteDocument(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(documentID)
}

func (m *memoryStore) removeLocked(documentID string) {
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.DocumentID != documentID {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
}

// search matches the whole query as one case-insensitive substring, so a
// multi-word query only hits chunks containing the full phrase.
func (m *memoryStore) search(query string, limit int, threshold float64, filterMetadata map[string]any) []models.SearchResult {
	if memoryKeywordScore < threshold {
		return []models.SearchResult{}
	}

	needle := strings.ToLower(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []*models.Chunk
	for _, chunk := range m.chunks {
		if !strings.Contains(strings.ToLower(chunk.Text), needle) {
			continue
		}
		if !matchesFilter(chunk.ToMap(), filterMetadata) {
			continue
		}
		matches = append(matches, chunk)
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.SearchResult, 0, len(matches))
	for _, chunk := range matches {
		results = append(results, models.SearchResult{
			Text:         chunk.Text,
			Metadata:     chunk.ToMap(),
			Similarity:   memoryKeywordScore,
			DocumentName: chunk.DocumentName,
			ChunkID:      chunk.ChunkID,
		})
	}
	return results
}

func (m *memoryStore) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func (m *memoryStore) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
}
