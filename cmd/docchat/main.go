// Docchat is a document question-answering daemon.
//
// It ingests markdown documents per session, indexes their passages in a
// vector store, and answers questions grounded in the session's own
// documents over an HTTP API.
//
// Usage:
//
//	# Start with defaults (embedded chromem store under ./data)
//	docchat
//
//	# Start with a config file
//	docchat -config config.yaml
//
//	# Configure via environment
//	DOCCHAT_SERVER_PORT=9090 OPENAI_API_KEY=sk-... docchat
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/aktuarialabs/docchat/internal/chunker"
	"github.com/aktuarialabs/docchat/internal/config"
	"github.com/aktuarialabs/docchat/internal/conversation"
	"github.com/aktuarialabs/docchat/internal/embeddings"
	"github.com/aktuarialabs/docchat/internal/generation"
	"github.com/aktuarialabs/docchat/internal/httpapi"
	"github.com/aktuarialabs/docchat/internal/ingest"
	"github.com/aktuarialabs/docchat/internal/logging"
	"github.com/aktuarialabs/docchat/internal/orchestrator"
	"github.com/aktuarialabs/docchat/internal/retriever"
	"github.com/aktuarialabs/docchat/internal/vectorstore"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("docchat\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run wires the service graph and blocks until the context is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting docchat",
		zap.String("version", version),
		zap.String("vectorstore_provider", cfg.VectorStore.Provider),
		zap.String("generation_model", cfg.Generation.Model),
		zap.String("embedding_model", cfg.Embeddings.Model),
	)

	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: cfg.Embeddings.BaseURL,
		Model:   cfg.Embeddings.Model,
		APIKey:  cfg.Embeddings.APIKey,
	})
	if err != nil {
		return fmt.Errorf("initializing embeddings: %w", err)
	}

	store, err := vectorstore.NewStore(cfg.VectorStore, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	defer store.Close()

	generator, err := generation.NewOpenAIClient(generation.Config{
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		APIKey:      cfg.Generation.APIKey,
		Temperature: cfg.Generation.Temperature,
		Timeout:     cfg.Generation.Timeout,
	})
	if err != nil {
		return fmt.Errorf("initializing generation client: %w", err)
	}

	sessionRetriever := retriever.New(store, retriever.Config{
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		OversampleFactor:    cfg.Retrieval.OversampleFactor,
	}, logger)

	conversations := conversation.NewStore(cfg.Retrieval.MaxHistoryTurns, logger)

	orch := orchestrator.New(sessionRetriever, store, conversations, generator, orchestrator.Config{
		TopK:                cfg.Retrieval.TopK,
		FallbackConfidence:  cfg.Retrieval.FallbackConfidence,
		HistoryContextTurns: cfg.Retrieval.HistoryContextTurns,
		GenerationModel:     cfg.Generation.Model,
		EmbeddingModel:      cfg.Embeddings.Model,
		ChunkSize:           cfg.Retrieval.ChunkSize,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
	}, logger)

	splitter := chunker.New(chunker.Config{
		ChunkSize:    cfg.Retrieval.ChunkSize,
		ChunkOverlap: cfg.Retrieval.ChunkOverlap,
	})
	ingestor := ingest.NewService(splitter, store, logger)

	server, err := httpapi.NewServer(orch, ingestor, logger, &httpapi.Config{
		Host:      cfg.Server.Host,
		Port:      cfg.Server.Port,
		UploadDir: cfg.Server.UploadDir,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}

	return nil
}
