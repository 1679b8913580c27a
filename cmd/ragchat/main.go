package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ragchat/internal/chat"
	"ragchat/internal/config"
	"ragchat/internal/core"
	"ragchat/internal/embed"
	"ragchat/internal/ingest"
	"ragchat/internal/llm"
	"ragchat/internal/logger"
	"ragchat/internal/rag"
)

func main() {
	// Parse command line flags
	debug := flag.Bool("debug", false, "Enable debug logging")
	inputFile := flag.String("input", "", "Path to the document to ingest (overrides RAG_INPUT_FILE)")
	recreate := flag.Bool("recreate", false, "Drop the collection before ingesting")
	mock := flag.Bool("mock", false, "Use the in-memory store instead of Milvus")
	flag.Parse()

	// Initialize logger
	logger.Init(*debug)

	// run owns all deferred cleanup; os.Exit lives only here so the Milvus
	// connection is closed even on the fatal path.
	if err := run(*inputFile, *recreate, *mock); err != nil {
		logger.Error("Session ended with error: %v", err)
		os.Exit(1)
	}

	logger.Info("Session ended")
}

func run(inputFile string, recreate, mock bool) error {
	logger.Info("Starting ragchat...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("Warning: No .env file found or error loading it")
	}

	// Load configuration, with command line overrides
	cfg := config.Load()
	if inputFile != "" {
		cfg.InputFile = inputFile
	}
	if recreate {
		cfg.RecreateCollection = true
	}
	if mock {
		cfg.MockStore = true
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if logger.IsDebugEnabled() {
		logger.Debug("Configuration loaded: InputFile=%s, ChunkSize=%d, ChunkOverlap=%d, TopK=%d, MilvusAddr=%s, Collection=%s, MockStore=%v",
			cfg.InputFile, cfg.ChunkSize, cfg.ChunkOverlap, cfg.TopK, cfg.MilvusAddr, cfg.Collection, cfg.MockStore)
	}

	// Set up cooperative cancellation: Ctrl-C cancels the context checked
	// by the loop and every external call.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize services
	logger.Info("Initializing services...")

	var store core.VectorStore
	if cfg.MockStore {
		logger.Info("Using in-memory vector store")
		store = rag.NewMemoryStore()
	} else {
		embedder := embed.NewClient(embed.Config{
			BaseURL: cfg.EmbeddingBaseURL,
			APIKey:  cfg.EmbeddingAPIKey,
			Model:   cfg.EmbeddingModel,
		})

		connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		milvus, err := rag.NewMilvusStore(connectCtx, cfg.MilvusAddr, cfg.Collection, embedder, cfg.EmbeddingDim)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to initialize Milvus store: %w", err)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := milvus.Close(closeCtx); err != nil {
				logger.Warn("Failed to close Milvus connection: %v", err)
			}
		}()
		store = milvus
	}

	chatService := llm.NewOpenRouterService(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
	pipeline := ingest.NewPipeline(store)

	loop := chat.NewLoop(pipeline, store, chatService, chat.Options{
		TopK:         cfg.TopK,
		SystemPrompt: cfg.SystemPrompt,
		Ingestion: ingest.Params{
			FilePath:           cfg.InputFile,
			ChunkSize:          cfg.ChunkSize,
			ChunkOverlap:       cfg.ChunkOverlap,
			RecreateCollection: cfg.RecreateCollection,
		},
	}, os.Stdin, os.Stdout)

	return loop.Run(ctx)
}
