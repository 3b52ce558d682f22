package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, 1000, cfg.Search.ChunkSize)
	assert.Equal(t, 200, cfg.Search.ChunkOverlap)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Equal(t, 0.7, cfg.Search.SimilarityThreshold)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
	assert.Equal(t, 10, cfg.Embedding.BatchSize)
	assert.Equal(t, 8000, cfg.Embedding.MaxChars)
	assert.Equal(t, int64(10*1024*1024), cfg.Documents.MaxFileSizeBytes())
	assert.Equal(t, ProviderGemini, cfg.LLM.DefaultProvider)
	assert.Equal(t, "document_embeddings", cfg.Storage.VectorStore.CollectionName)
	assert.ElementsMatch(t, []string{".pdf", ".docx", ".txt", ".md"}, cfg.Documents.AllowedExtensions)
	assert.False(t, cfg.Processing.Enabled)
}

func TestLoadFromFile_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[documents]
dir = "/srv/docs"
max_file_size_mb = 5

[search]
chunk_size = 500
similarity_threshold = 0.5

[llm]
default_provider = "claude"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/docs", cfg.Documents.Dir)
	assert.Equal(t, 5, cfg.Documents.MaxFileSizeMB)
	assert.Equal(t, 500, cfg.Search.ChunkSize)
	assert.Equal(t, 0.5, cfg.Search.SimilarityThreshold)
	assert.Equal(t, ProviderClaude, cfg.LLM.DefaultProvider)
	// Untouched fields keep their defaults.
	assert.Equal(t, 200, cfg.Search.ChunkOverlap)
	assert.Equal(t, 768, cfg.Embedding.Dimension)
}

func TestLoadFromFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.toml")
	second := filepath.Join(dir, "second.toml")
	require.NoError(t, os.WriteFile(first, []byte("[search]\nchunk_size = 500\nmax_results = 3\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("[search]\nchunk_size = 800\n"), 0644))

	cfg, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Search.ChunkSize)
	assert.Equal(t, 3, cfg.Search.MaxResults)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHATBOT_DOCUMENTS_DIR", "/env/docs")
	t.Setenv("CHATBOT_CHUNK_SIZE", "250")
	t.Setenv("CHATBOT_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("CHATBOT_LLM_PROVIDER", "CLAUDE")
	t.Setenv("GEMINI_API_KEY", "test-google-key")
	t.Setenv("CHATBOT_PROCESSING_ENABLED", "true")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "/env/docs", cfg.Documents.Dir)
	assert.Equal(t, 250, cfg.Search.ChunkSize)
	assert.Equal(t, 0.9, cfg.Search.SimilarityThreshold)
	assert.Equal(t, ProviderClaude, cfg.LLM.DefaultProvider)
	assert.Equal(t, "test-google-key", cfg.LLM.GoogleAPIKey)
	assert.True(t, cfg.Processing.Enabled)
}

func TestEnvOverrides_InvalidNumbersIgnored(t *testing.T) {
	t.Setenv("CHATBOT_CHUNK_SIZE", "not-a-number")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Search.ChunkSize)
}

func TestLoadFromFiles_ValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[search]\nchunk_size = -1\n"), 0644))

	_, err := LoadFromFiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
