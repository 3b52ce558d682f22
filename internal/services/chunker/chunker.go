package chunker

import (
	"strings"
	"time"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

// Chunker splits document text into overlapping, addressable chunks using a
// sliding window. Chunk ids are deterministic ({document_id}_chunk_{index})
// and index order matches character-offset order.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker with the given window size and overlap, both counted
// in characters. An overlap >= size is clamped so the window always advances.
func New(chunkSize, overlap int) *Chunker {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize - 1
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// ChunkText produces the ordered chunk sequence for a document. Windows are
// clipped to the text length; a window that is empty after trimming is
// skipped without consuming an index, but offsets always refer to the
// untrimmed window. Non-empty text yields at least one chunk.
func (c *Chunker) ChunkText(text, documentID, documentName string) []*models.Chunk {
	runes := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}

	var chunks []*models.Chunk
	now := time.Now()
	start := 0
	index := 0

	for start < len(runes) {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[start:end])
		trimmed := strings.TrimSpace(window)
		if trimmed != "" {
			chunks = append(chunks, &models.Chunk{
				ChunkID:      models.ChunkIDFor(documentID, index),
				Text:         trimmed,
				DocumentID:   documentID,
				DocumentName: documentName,
				ChunkIndex:   index,
				StartChar:    start,
				EndChar:      end,
				Metadata:     map[string]any{},
				CreatedAt:    now,
			})
			index++
		}

		if end >= len(runes) {
			break
		}
		start = end - c.overlap
	}

	return chunks
}

// ChunkSize returns the configured window size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured window overlap.
func (c *Chunker) Overlap() int { return c.overlap }
