package models

import (
	"fmt"
	"time"
)

// Chunk is the atomic retrieval unit: a bounded, addressable span of a
// document's text. Chunks are created during ingestion and never mutated;
// they are destroyed only by deleting the owning document.
type Chunk struct {
	ChunkID      string         `json:"chunk_id"` // {document_id}_chunk_{index}
	Text         string         `json:"text"`
	DocumentID   string         `json:"document_id"`
	DocumentName string         `json:"document_name"`
	ChunkIndex   int            `json:"chunk_index"`
	StartChar    int            `json:"start_char"` // Offset into the original text, pre-trim
	EndChar      int            `json:"end_char"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ChunkIDFor builds the deterministic chunk identifier for a document and index.
func ChunkIDFor(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// ToMap flattens the chunk into the metadata form stored alongside its
// embedding, merging the free-form metadata map.
func (c *Chunk) ToMap() map[string]any {
	m := map[string]any{
		"chunk_id":      c.ChunkID,
		"text":          c.Text,
		"document_id":   c.DocumentID,
		"document_name": c.DocumentName,
		"chunk_index":   c.ChunkIndex,
		"start_char":    c.StartChar,
		"end_char":      c.EndChar,
		"created_at":    c.CreatedAt.Format(time.RFC3339),
	}
	for k, v := range c.Metadata {
		if _, reserved := m[k]; !reserved {
			m[k] = v
		}
	}
	return m
}

// SearchResult is one similarity-search hit returned by the vector store.
type SearchResult struct {
	Text         string         `json:"text"`
	Metadata     map[string]any `json:"metadata"`
	Similarity   float64        `json:"similarity"` // In [0,1]; threshold-filtered by the store
	DocumentName string         `json:"document_name"`
	ChunkID      string         `json:"chunk_id"`
}

// CollectionStats reports the current state of the vector store collection.
type CollectionStats struct {
	Status         string `json:"status"` // ready | error
	TotalChunks    int    `json:"total_chunks"`
	StorageType    string `json:"storage_type"` // sqlite_vec | in_memory
	CollectionName string `json:"collection_name,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HealthStatus reports vector store health. Status is "healthy" when the
// persistent backend answers a probe, "degraded" in fallback mode and
// "unhealthy" when the probe itself fails.
type HealthStatus struct {
	Status            string `json:"status"`
	PersistentBackend bool   `json:"persistent_backend"`
	Initialized       bool   `json:"initialized"`
	TotalChunks       int    `json:"total_chunks"`
	Error             string `json:"error,omitempty"`
}
