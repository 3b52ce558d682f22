// -----------------------------------------------------------------------
// Application wiring - constructs and owns the service graph
// -----------------------------------------------------------------------

package app

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/common"
	"github.com/XkhldY/resume-chatbot/internal/interfaces"
	"github.com/XkhldY/resume-chatbot/internal/services/cache"
	"github.com/XkhldY/resume-chatbot/internal/services/chat"
	"github.com/XkhldY/resume-chatbot/internal/services/embeddings"
	"github.com/XkhldY/resume-chatbot/internal/services/extractor"
	"github.com/XkhldY/resume-chatbot/internal/services/llm"
	"github.com/XkhldY/resume-chatbot/internal/services/processing"
	"github.com/XkhldY/resume-chatbot/internal/services/scanner"
	"github.com/XkhldY/resume-chatbot/internal/services/vectorstore"
)

// App holds all application components and dependencies.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Pipeline services
	ScannerService   interfaces.DocumentScanner
	ExtractorService interfaces.TextExtractor
	CacheService     interfaces.EmbeddingCache // nil when the cache is disabled
	EmbeddingService interfaces.EmbeddingService
	VectorStore      interfaces.VectorStore

	// Providers
	ChatLLM      interfaces.LLMService
	EmbeddingLLM interfaces.LLMService

	// Front services
	ChatService       *chat.Service
	ProcessingService *processing.Service
	Scheduler         *processing.Scheduler
}

// New initializes the application with all dependencies.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	chatLLM, err := llm.NewService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize llm provider: %w", err)
	}
	app.ChatLLM = chatLLM

	embeddingLLM, err := llm.NewEmbeddingProvider(cfg, chatLLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	app.EmbeddingLLM = embeddingLLM

	if cfg.Storage.Cache.Enabled {
		cacheService, err := cache.NewService(cfg.Storage.Cache, logger)
		if err != nil {
			// The cache only saves provider calls; run without it.
			logger.Warn().Err(err).Msg("Embedding cache unavailable, continuing without caching")
		} else {
			app.CacheService = cacheService
		}
	}

	app.EmbeddingService = embeddings.NewService(cfg, embeddingLLM, app.CacheService, logger)
	app.VectorStore = vectorstore.NewService(cfg, app.EmbeddingService, logger)
	app.ScannerService = scanner.NewService(cfg.Documents, logger)
	app.ExtractorService = extractor.NewService(cfg.Documents, logger)

	app.ChatService = chat.NewService(cfg, app.VectorStore, chatLLM, logger)
	app.ProcessingService = processing.NewService(cfg, app.ScannerService, app.ExtractorService, app.VectorStore, logger)
	app.Scheduler = processing.NewScheduler(app.ProcessingService, logger)

	logger.Info().
		Str("chat_provider", chatLLM.Name()).
		Str("embedding_provider", embeddingLLM.Name()).
		Bool("cache_enabled", app.CacheService != nil).
		Msg("Application initialized")

	return app, nil
}

// StartScheduler starts periodic re-processing when enabled in configuration.
func (a *App) StartScheduler() error {
	if !a.Config.Processing.Enabled {
		a.Logger.Debug().Msg("Scheduled processing disabled")
		return nil
	}
	return a.Scheduler.Start(a.Config.Processing.Schedule)
}

// Close shuts down components in reverse dependency order.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.VectorStore != nil {
		if err := a.VectorStore.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Vector store close failed")
		}
	}
	if a.CacheService != nil {
		if err := a.CacheService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Embedding cache close failed")
		}
	}
	a.Logger.Info().Msg("Application closed")
}
