// Command embedd runs the embedding gRPC service: an authenticated,
// mutual-TLS endpoint that turns query batches into Arrow-serialized
// embedding matrices.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valacy/retrieval/internal/config"
	"github.com/valacy/retrieval/internal/embedding"
	"github.com/valacy/retrieval/internal/server"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("starting embedding service",
		"grpc_port", cfg.EmbeddingPort,
		"http_port", cfg.EmbeddingHTTPPort,
		"environment", cfg.Environment,
	)

	embedder := embedding.NewOllamaEmbedder(embedding.OllamaConfig{
		BaseURL: cfg.OllamaURL,
		Model:   cfg.OllamaEmbeddingModel,
	})
	slog.Info("initialized embedder", "model", embedder.ModelName(), "dimension", embedder.Dimension())

	service := server.NewEmbeddingService(embedder, slog.Default())

	grpcServer, err := server.NewGRPCServer(server.GRPCServerConfig{
		Port:   cfg.EmbeddingPort,
		Token:  cfg.EmbeddingToken,
		SSLDir: cfg.SSLDir,
		Logger: slog.Default(),
	}, service)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}

	httpServer := server.NewHTTPServer(server.HTTPServerConfig{
		Port:   cfg.EmbeddingHTTPPort,
		Logger: slog.Default(),
	})

	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	}

	slog.Info("shutting down servers...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown HTTP server", "error", err)
	}
	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown gRPC server", "error", err)
	}

	slog.Info("servers stopped")
	return nil
}
