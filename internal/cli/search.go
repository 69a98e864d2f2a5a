package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valacy/retrieval/internal/retrieval"
	"github.com/valacy/retrieval/internal/vectorstore"
)

var (
	searchMode    string
	searchLimit   int
	searchRerank  bool
	searchRerankK int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vector store",
	Long: `Runs a retrieval pass for the query within the organization scope.
Modes: vector (nearest neighbor), keyword (full text), hybrid (both,
de-duplicated). With --rerank the accumulated candidates are reordered
by the configured LLM before printing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchMode, "mode", "hybrid", "retrieval mode: vector, keyword, or hybrid")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum hits per signal (default 20)")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "rerank candidates with the LLM")
	searchCmd.Flags().IntVar(&searchRerankK, "rerank-k", 0, "documents to keep after rerank (default 5)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireOrganization(); err != nil {
		return err
	}
	query := args[0]

	ctx := context.Background()
	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	if searchLimit <= 0 {
		searchLimit = d.cfg.DefaultTopK
	}
	if searchRerankK <= 0 {
		searchRerankK = d.cfg.DefaultRerankK
	}

	store, err := d.store()
	if err != nil {
		return err
	}
	embedder, err := d.embedder()
	if err != nil {
		return err
	}

	engine := retrieval.NewEngine(embedder, store, vectorstore.QueryConfig{
		Organization:     flagOrganization,
		EmbeddingModel:   embedder.ModelName(),
		SentenceSplitter: flagSplitter,
	})

	searchCtx, cancel := context.WithTimeout(ctx, d.cfg.EmbeddingTimeout)
	defer cancel()

	var block string
	switch searchMode {
	case "vector":
		block, err = engine.Retrieve(searchCtx, query, searchLimit)
	case "keyword":
		block, err = engine.KeywordRetrieve(searchCtx, query, searchLimit)
	case "hybrid":
		block, err = engine.HybridRetrieve(searchCtx, query, searchLimit)
	default:
		return fmt.Errorf("unknown mode %q", searchMode)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if !searchRerank {
		if block == "" {
			cmd.Println("No results found.")
			return nil
		}
		cmd.Print(block)
		return nil
	}

	reranker := retrieval.NewReranker(d.llmClient(),
		retrieval.WithRerankModel(d.cfg.RerankModel))
	ranked, metas := reranker.Rerank(ctx, query, engine.Session(), searchRerankK)
	if ranked == "" {
		cmd.Println("No relevant results.")
		return nil
	}
	cmd.Println(ranked)
	for i, meta := range metas {
		cmd.Printf("  [%d] meta=%v\n", i+1, meta)
	}
	return nil
}
