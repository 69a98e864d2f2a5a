// Package cli implements the retrieval admin command line: document
// ingestion, search, and registry management against a running deployment.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/valacy/retrieval/internal/chunker"
	"github.com/valacy/retrieval/internal/config"
	"github.com/valacy/retrieval/internal/embedding"
	"github.com/valacy/retrieval/internal/llm"
	"github.com/valacy/retrieval/internal/vectorstore"
)

var (
	flagOrganization string
	flagDimension    int
	flagSplitter     string
)

// timeRounding keeps printed durations readable.
const timeRounding = time.Millisecond

var rootCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Document ingestion and hybrid retrieval administration",
	Long: `Administers the retrieval subsystem: ingests documents into the
vector store, runs vector/keyword/hybrid searches, and manages the
document registry. Configuration comes from the environment and an
optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOrganization, "org", "", "organization scope (required for most commands)")
	rootCmd.PersistentFlags().IntVar(&flagDimension, "dimension", 0, "vector dimension shard (default from EMBEDDING_DIMENSION)")
	rootCmd.PersistentFlags().StringVar(&flagSplitter, "splitter", chunker.SentenceWindowTag, "chunking strategy (SentenceWindow or ParagraphMerge)")
}

// Execute runs the root command.
func Execute() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps holds everything a command needs, built lazily per invocation.
type deps struct {
	cfg      *config.Config
	db       *vectorstore.DB
	registry *vectorstore.Registry
	docs     *vectorstore.DocumentRepo
}

func openDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := vectorstore.New(ctx, cfg.DatabaseURL, cfg.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &deps{
		cfg:      cfg,
		db:       db,
		registry: vectorstore.NewRegistry(db),
		docs:     vectorstore.NewDocumentRepo(db),
	}, nil
}

func (d *deps) Close() {
	d.db.Close()
}

// dimension resolves the shard width: flag first, then config.
func (d *deps) dimension() int {
	if flagDimension > 0 {
		return flagDimension
	}
	return d.cfg.EmbeddingDimension
}

// store returns the shard for the resolved dimension.
func (d *deps) store() (*vectorstore.Store, error) {
	return d.registry.Store(d.dimension())
}

// splitter builds the chunking strategy from the flag.
func (d *deps) splitter() (chunker.Splitter, error) {
	switch flagSplitter {
	case chunker.SentenceWindowTag:
		return chunker.NewSentenceSplitter(d.cfg.ChunkSize, d.cfg.ChunkOverlap), nil
	case chunker.ParagraphMergeTag:
		return chunker.NewParagraphMerger(d.cfg.ChunkSize, 0), nil
	default:
		return nil, fmt.Errorf("unknown splitter %q", flagSplitter)
	}
}

// embedder builds the configured embedder: the remote mutual-TLS service when
// credentials are present, the local Ollama encoder otherwise.
func (d *deps) embedder() (embedding.Embedder, error) {
	if d.cfg.SSLDir != "" && d.cfg.EmbeddingToken != "" {
		return embedding.NewClient(embedding.ClientConfig{
			Addr:               d.cfg.EmbeddingAddr,
			Token:              d.cfg.EmbeddingToken,
			SSLDir:             d.cfg.SSLDir,
			ServerNameOverride: d.cfg.ServerNameOverride,
			Dimension:          d.cfg.EmbeddingDimension,
			Model:              d.cfg.EmbeddingModelTag,
		})
	}
	return embedding.NewOllamaEmbedder(embedding.OllamaConfig{
		BaseURL: d.cfg.OllamaURL,
		Model:   d.cfg.OllamaEmbeddingModel,
	}), nil
}

// llmClient builds the reranking LLM: the OpenAI-compatible endpoint when an
// API key is present, local Ollama otherwise.
func (d *deps) llmClient() llm.LLM {
	if d.cfg.LLMAPIKey != "" {
		opts := []llm.OpenAIOption{
			llm.WithAPIKey(d.cfg.LLMAPIKey),
			llm.WithOpenAIModel(d.cfg.RerankModel),
		}
		if d.cfg.LLMBaseURL != "" {
			opts = append(opts, llm.WithOpenAIBaseURL(d.cfg.LLMBaseURL))
		}
		return llm.NewOpenAIClient(opts...)
	}
	return llm.NewOllamaClient(
		llm.WithBaseURL(d.cfg.OllamaURL),
		llm.WithModel(d.cfg.OllamaLLMModel),
	)
}

func requireOrganization() error {
	if flagOrganization == "" {
		return fmt.Errorf("--org is required")
	}
	return nil
}
