package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"

	"github.com/XkhldY/resume-chatbot/internal/models"
)

func init() {
	sqlite_vec.Auto()
}

// sqliteVecStore persists chunks and their embeddings in SQLite with the
// sqlite-vec extension. The vec0 table is keyed by the chunks rowid and
// declared with cosine distance, so similarity is 1 - distance by
// construction.
type sqliteVecStore struct {
	db        *sql.DB
	dimension int
}

func newSQLiteVecStore(ctx context.Context, path string, dimension int) (*sqliteVecStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create vector store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS chunks (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    chunk_id      TEXT NOT NULL UNIQUE,
    document_id   TEXT NOT NULL,
    document_name TEXT NOT NULL,
    chunk_index   INTEGER NOT NULL,
    content       TEXT NOT NULL,
    metadata      TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine
);
`, dimension)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create vector store schema: %w", err)
	}

	return &sqliteVecStore{db: db, dimension: dimension}, nil
}

// replaceDocument swaps a document's chunks and embeddings in one
// transaction so readers never observe a half-indexed document.
func (s *sqliteVecStore) replaceDocument(ctx context.Context, documentID string, chunks []*models.Chunk, embeddings [][]float32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteDocumentTx(ctx, tx, documentID); err != nil {
		return err
	}

	insertChunk, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (chunk_id, document_id, document_name, chunk_index, content, metadata)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insertChunk.Close()

	insertVec, err := tx.PrepareContext(ctx, "INSERT INTO vec_chunks (chunk_id, embedding) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer insertVec.Close()

	for i, chunk := range chunks {
		metadata, err := json.Marshal(chunk.ToMap())
		if err != nil {
			return fmt.Errorf("marshal metadata for chunk %s: %w", chunk.ChunkID, err)
		}

		res, err := insertChunk.ExecContext(ctx, chunk.ChunkID, chunk.DocumentID, chunk.DocumentName, chunk.ChunkIndex, chunk.Text, string(metadata))
		if err != nil {
			return fmt.Errorf("insert chunk %s: %w", chunk.ChunkID, err)
		}

		rowID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		blob, err := sqlite_vec.SerializeFloat32(embeddings[i])
		if err != nil {
			return fmt.Errorf("serialize embedding for chunk %s: %w", chunk.ChunkID, err)
		}
		if _, err := insertVec.ExecContext(ctx, rowID, blob); err != nil {
			return fmt.Errorf("insert embedding for chunk %s: %w", chunk.ChunkID, err)
		}
	}

	return tx.Commit()
}

// search runs a KNN query and maps distances to similarity scores, dropping
// hits below the threshold and hits that fail the metadata filter.
func (s *sqliteVecStore) search(ctx context.Context, queryEmbedding []float32, limit int, threshold float64, filterMetadata map[string]any) ([]models.SearchResult, error) {
	blob, err := sqlite_vec.SerializeFloat32(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.distance, c.chunk_id, c.document_name, c.content, c.metadata
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ?
		ORDER BY v.distance
		LIMIT ?`, blob, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.SearchResult, 0, limit)
	for rows.Next() {
		var (
			distance     float64
			chunkID      string
			documentName string
			content      string
			metadataJSON string
		)
		if err := rows.Scan(&distance, &chunkID, &documentName, &content, &metadataJSON); err != nil {
			return nil, err
		}

		similarity := 1 - distance
		if similarity < 0 {
			similarity = 0
		}
		if similarity < threshold {
			continue
		}

		metadata := map[string]any{}
		if err := json.Unmarshal([]byte(metadataJSON), &metadata); err != nil {
			metadata = map[string]any{}
		}
		if !matchesFilter(metadata, filterMetadata) {
			continue
		}

		results = append(results, models.SearchResult{
			Text:         content,
			Metadata:     metadata,
			Similarity:   similarity,
			DocumentName: documentName,
			ChunkID:      chunkID,
		})
	}

	return results, rows.Err()
}

func (s *sqliteVecStore) deleteDocument(ctx context.Context, documentID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := deleteDocumentTx(ctx, tx, documentID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteDocumentTx(ctx context.Context, tx *sql.Tx, documentID string) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM vec_chunks WHERE chunk_id IN (SELECT id FROM chunks WHERE document_id = ?)", documentID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	return err
}

func (s *sqliteVecStore) count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

func (s *sqliteVecStore) clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vec_chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteVecStore) close() error {
	return s.db.Close()
}

// matchesFilter applies exact-match metadata filtering. JSON numbers decode
// as float64, so numeric filter values are compared through fmt to avoid
// int/float mismatches.
func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok {
			return false
		}
		if got != want && fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}
