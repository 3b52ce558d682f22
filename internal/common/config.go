package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Documents   DocumentsConfig  `toml:"documents"`
	Storage     StorageConfig    `toml:"storage"`
	Embedding   EmbeddingConfig  `toml:"embedding"`
	Search      SearchConfig     `toml:"search"`
	LLM         LLMConfig        `toml:"llm"`
	Chat        ChatConfig       `toml:"chat"`
	Processing  ProcessingConfig `toml:"processing"`
	Logging     LoggingConfig    `toml:"logging"`
}

// DocumentsConfig controls the documents folder and upload validation.
type DocumentsConfig struct {
	Dir               string   `toml:"dir"`                  // Documents root path
	MaxFileSizeMB     int      `toml:"max_file_size_mb"`     // Per-file extraction cap
	MaxFilesPerUpload int      `toml:"max_files_per_upload"` // Upload batch cap
	AllowedExtensions []string `toml:"allowed_extensions"`   // e.g. [".pdf", ".docx", ".txt", ".md"]
	AllowedMIMETypes  []string `toml:"allowed_mime_types"`
}

// MaxFileSizeBytes converts the configured MB cap to bytes.
func (d *DocumentsConfig) MaxFileSizeBytes() int64 {
	return int64(d.MaxFileSizeMB) * 1024 * 1024
}

type StorageConfig struct {
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Cache       CacheConfig       `toml:"cache"`
}

// VectorStoreConfig represents the persistent vector index configuration.
type VectorStoreConfig struct {
	Path           string `toml:"path"`            // SQLite database file path
	CollectionName string `toml:"collection_name"` // Logical collection label reported in stats
}

// CacheConfig represents the Badger-backed embedding cache configuration.
type CacheConfig struct {
	Path    string `toml:"path"`
	Enabled bool   `toml:"enabled"`
}

// EmbeddingConfig controls embedding generation and batching.
type EmbeddingConfig struct {
	Dimension     int    `toml:"dimension" validate:"gt=0"`
	BatchSize     int    `toml:"batch_size" validate:"gt=0"`
	MaxChars      int    `toml:"max_chars" validate:"gt=0"` // Truncation cap, cut at a word boundary
	BatchInterval string `toml:"batch_interval"`            // Minimum delay between batches, e.g. "200ms"
	MaxRetries    int    `toml:"max_retries"`
	RetryBackoff  string `toml:"retry_backoff"` // Initial backoff, e.g. "1s"
}

// SearchConfig controls similarity search behavior.
type SearchConfig struct {
	MaxResults          int     `toml:"max_results" validate:"gt=0"`
	SimilarityThreshold float64 `toml:"similarity_threshold" validate:"gte=0,lte=1"`
	ChunkSize           int     `toml:"chunk_size" validate:"gt=0"`
	ChunkOverlap        int     `toml:"chunk_overlap" validate:"gte=0"`
}

// LLMProvider identifies a text-completion/embedding provider.
type LLMProvider string

const (
	ProviderGemini LLMProvider = "gemini"
	ProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
	GoogleAPIKey    string      `toml:"google_api_key"`
	AnthropicAPIKey string      `toml:"anthropic_api_key"`
	ChatModelName   string      `toml:"chat_model_name"`
	EmbedModelName  string      `toml:"embed_model_name"`
	Timeout         string      `toml:"timeout"` // e.g. "30s"
}

// ChatConfig controls context assembly for answering queries.
type ChatConfig struct {
	MaxContextChunks int     `toml:"max_context_chunks"`
	MaxTokens        int     `toml:"max_tokens"`
	Temperature      float64 `toml:"temperature"`
}

// ProcessingConfig controls batch corpus processing.
type ProcessingConfig struct {
	Enabled     bool   `toml:"enabled"`     // Enable scheduled re-processing
	Schedule    string `toml:"schedule"`    // Cron schedule format
	Concurrency int    `toml:"concurrency"` // Documents processed in parallel
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Documents: DocumentsConfig{
			Dir:               "./documents",
			MaxFileSizeMB:     10,
			MaxFilesPerUpload: 10,
			AllowedExtensions: []string{".pdf", ".docx", ".txt", ".md"},
			AllowedMIMETypes: []string{
				"application/pdf",
				"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
				"text/plain",
				"text/markdown",
			},
		},
		Storage: StorageConfig{
			VectorStore: VectorStoreConfig{
				Path:           "./data/vectors.db",
				CollectionName: "document_embeddings",
			},
			Cache: CacheConfig{
				Path:    "./data/cache",
				Enabled: true,
			},
		},
		Embedding: EmbeddingConfig{
			Dimension:     768,
			BatchSize:     10,
			MaxChars:      8000,
			BatchInterval: "200ms",
			MaxRetries:    3,
			RetryBackoff:  "1s",
		},
		Search: SearchConfig{
			MaxResults:          10,
			SimilarityThreshold: 0.7,
			ChunkSize:           1000,
			ChunkOverlap:        200,
		},
		LLM: LLMConfig{
			DefaultProvider: ProviderGemini,
			ChatModelName:   "gemini-2.0-flash",
			EmbedModelName:  "text-embedding-004",
			Timeout:         "30s",
		},
		Chat: ChatConfig{
			MaxContextChunks: 5,
			MaxTokens:        500,
			Temperature:      0.7,
		},
		Processing: ProcessingConfig{
			Enabled:     false,           // Disabled by default - user must explicitly opt-in
			Schedule:    "0 0 */6 * * *", // Every 6 hours (cron format)
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files override
// earlier files, and environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CHATBOT_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if dir := os.Getenv("CHATBOT_DOCUMENTS_DIR"); dir != "" {
		config.Documents.Dir = dir
	}
	if maxSize := os.Getenv("CHATBOT_MAX_FILE_SIZE_MB"); maxSize != "" {
		if v, err := strconv.Atoi(maxSize); err == nil {
			config.Documents.MaxFileSizeMB = v
		}
	}
	if path := os.Getenv("CHATBOT_VECTOR_STORE_PATH"); path != "" {
		config.Storage.VectorStore.Path = path
	}
	if name := os.Getenv("CHATBOT_COLLECTION_NAME"); name != "" {
		config.Storage.VectorStore.CollectionName = name
	}
	if path := os.Getenv("CHATBOT_CACHE_PATH"); path != "" {
		config.Storage.Cache.Path = path
	}
	if size := os.Getenv("CHATBOT_CHUNK_SIZE"); size != "" {
		if v, err := strconv.Atoi(size); err == nil {
			config.Search.ChunkSize = v
		}
	}
	if overlap := os.Getenv("CHATBOT_CHUNK_OVERLAP"); overlap != "" {
		if v, err := strconv.Atoi(overlap); err == nil {
			config.Search.ChunkOverlap = v
		}
	}
	if maxResults := os.Getenv("CHATBOT_MAX_SEARCH_RESULTS"); maxResults != "" {
		if v, err := strconv.Atoi(maxResults); err == nil {
			config.Search.MaxResults = v
		}
	}
	if threshold := os.Getenv("CHATBOT_SIMILARITY_THRESHOLD"); threshold != "" {
		if v, err := strconv.ParseFloat(threshold, 64); err == nil {
			config.Search.SimilarityThreshold = v
		}
	}
	if maxChars := os.Getenv("CHATBOT_MAX_EMBEDDING_CHARS"); maxChars != "" {
		if v, err := strconv.Atoi(maxChars); err == nil {
			config.Embedding.MaxChars = v
		}
	}
	if batchSize := os.Getenv("CHATBOT_EMBEDDING_BATCH_SIZE"); batchSize != "" {
		if v, err := strconv.Atoi(batchSize); err == nil {
			config.Embedding.BatchSize = v
		}
	}
	if provider := os.Getenv("CHATBOT_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.GoogleAPIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.AnthropicAPIKey = key
	}
	if level := os.Getenv("CHATBOT_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CHATBOT_LOG_OUTPUT"); output != "" {
		outputs := strings.Split(output, ",")
		for i := range outputs {
			outputs[i] = strings.TrimSpace(outputs[i])
		}
		config.Logging.Output = outputs
	}
	if enabled := os.Getenv("CHATBOT_PROCESSING_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			config.Processing.Enabled = v
		}
	}
	if schedule := os.Getenv("CHATBOT_PROCESSING_SCHEDULE"); schedule != "" {
		config.Processing.Schedule = schedule
	}
}
