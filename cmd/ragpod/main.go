package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ragpod"
)

const shutdownTimeout = 10 * time.Second

func main() {
	addr := flag.String("addr", "", "Listen address (overrides LISTEN_ADDR)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := ragpod.LoadConfig()
	if *addr != "" {
		cfg.ListenAddr = *addr
	}
	if cfg.LLMAPIKey == "" {
		logger.Error("LLM_API_KEY is required")
		os.Exit(1)
	}

	llm := ragpod.NewLLMClient(cfg.LLMAPIKey, cfg.LLMBaseURL)
	embedder := ragpod.NewOpenAIEmbedder(cfg.EmbeddingAPIKey, cfg.EmbeddingBaseURL, cfg.EmbeddingModelName, cfg.EmbeddingDim)
	index := ragpod.NewMilvusIndex(cfg.MilvusURI, cfg.MilvusToken, cfg.MilvusCollection, cfg.EmbeddingDim)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := index.EnsureCollection(ctx); err != nil {
		logger.Error("Failed to prepare vector collection", "error", err)
		os.Exit(1)
	}

	retriever := ragpod.NewRetriever(embedder, index)
	registry := ragpod.NewRegistry(ragpod.NewRetrieveContextTool(retriever, cfg.TopK))
	machine := ragpod.NewTurnMachine(llm, cfg.LLMModelName, registry, cfg.MaxToolHops)
	store := ragpod.NewPostgresStore(ragpod.PostgresDSN(cfg), cfg.PostgresPoolMin, cfg.PostgresPoolMax)
	orchestrator := ragpod.NewOrchestrator(store, machine)
	server := ragpod.NewServer(orchestrator)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Handler(),
	}

	go func() {
		logger.Info("Server listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("Failed to close session store", "error", err)
	}
	if err := index.Close(); err != nil {
		logger.Error("Failed to close vector index", "error", err)
	}
}
