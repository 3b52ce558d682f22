// -----------------------------------------------------------------------
// Resume Chatbot - document ingestion and retrieval-augmented chat
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/XkhldY/resume-chatbot/internal/app"
	"github.com/XkhldY/resume-chatbot/internal/common"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <command> [args]

Commands:
  run              Process the document corpus, then keep running scheduled re-processing
  process          Process the document corpus once and exit
  ask <question>   Answer a question from the indexed documents
  health           Report vector store and provider health

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Resume Chatbot version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("resume-chatbot.toml"); err == nil {
			configFiles = append(configFiles, "resume-chatbot.toml")
		} else if _, err := os.Stat("deployments/local/resume-chatbot.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/resume-chatbot.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("documents_dir", config.Documents.Dir).
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Msg("Application configuration loaded")

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	command := flag.Arg(0)
	if command == "" {
		command = "run"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch command {
	case "run":
		err = runForever(ctx, application)
	case "process":
		err = runProcess(ctx, application)
	case "ask":
		question := strings.TrimSpace(strings.Join(flag.Args()[1:], " "))
		err = runAsk(ctx, application, question)
	case "health":
		err = runHealth(ctx, application)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Command failed")
		os.Exit(1)
	}
}

// runForever processes the corpus once, then keeps the scheduler running
// until an interrupt arrives.
func runForever(ctx context.Context, application *app.App) error {
	if err := runProcess(ctx, application); err != nil {
		return err
	}

	if err := application.StartScheduler(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().Msg("Ready - Press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info().Msg("Interrupt signal received, shutting down")
	return nil
}

func runProcess(ctx context.Context, application *app.App) error {
	result, err := application.ProcessingService.ProcessAllDocuments(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("\nProcessed %d of %d documents in %s (%d words, %d characters)\n",
		result.ProcessedCount, result.TotalDocuments, result.Duration.Round(time.Millisecond),
		result.TotalWords, result.TotalCharacters)

	extensions := make([]string, 0, len(result.FileTypes))
	for ext := range result.FileTypes {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	for _, ext := range extensions {
		stats := result.FileTypes[ext]
		fmt.Printf("  %-6s %d file(s), %d words\n", ext, stats.Count, stats.Words)
	}

	for _, failed := range result.FailedDocuments {
		fmt.Printf("  FAILED %s: %s\n", failed.Filename, failed.Error)
	}
	return nil
}

func runAsk(ctx context.Context, application *app.App, question string) error {
	if question == "" {
		return fmt.Errorf("usage: ask <question>")
	}

	answer, err := application.ChatService.Ask(ctx, question)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", answer.Text)
	if len(answer.Sources) > 0 {
		seen := map[string]bool{}
		fmt.Printf("\nSources:\n")
		for _, source := range answer.Sources {
			if seen[source.DocumentName] {
				continue
			}
			seen[source.DocumentName] = true
			fmt.Printf("  - %s\n", source.DocumentName)
		}
	}
	return nil
}

func runHealth(ctx context.Context, application *app.App) error {
	health := application.VectorStore.HealthCheck(ctx)
	fmt.Printf("Vector store: %s (backend=%v, chunks=%d)\n",
		health.Status, health.PersistentBackend, health.TotalChunks)

	if err := application.ChatLLM.HealthCheck(ctx); err != nil {
		fmt.Printf("Chat provider %s: unreachable (%v)\n", application.ChatLLM.Name(), err)
	} else {
		fmt.Printf("Chat provider %s: ok\n", application.ChatLLM.Name())
	}

	if application.EmbeddingLLM.Name() != application.ChatLLM.Name() {
		if err := application.EmbeddingLLM.HealthCheck(ctx); err != nil {
			fmt.Printf("Embedding provider %s: unreachable (%v)\n", application.EmbeddingLLM.Name(), err)
		} else {
			fmt.Printf("Embedding provider %s: ok\n", application.EmbeddingLLM.Name())
		}
	}
	return nil
}
