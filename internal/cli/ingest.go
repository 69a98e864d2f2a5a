package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/valacy/retrieval/internal/ingestion"
)

var (
	ingestDescription string
	ingestPrivilege   int
	ingestDocID       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the vector store",
	Long: `Reads each file, splits it into chunks, embeds the chunks, and stores
them in the dimension shard together with a registry entry. A failed
document does not leave partial chunks behind.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDescription, "description", "", "registry description")
	ingestCmd.Flags().IntVar(&ingestPrivilege, "privilege", 0, "search privilege (default 100)")
	ingestCmd.Flags().StringVar(&ingestDocID, "doc-id", "", "explicit doc_id (single file only)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := requireOrganization(); err != nil {
		return err
	}
	if ingestDocID != "" && len(args) > 1 {
		return fmt.Errorf("--doc-id cannot be used with multiple files")
	}

	ctx := context.Background()
	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	store, err := d.store()
	if err != nil {
		return err
	}
	splitter, err := d.splitter()
	if err != nil {
		return err
	}
	embedder, err := d.embedder()
	if err != nil {
		return err
	}

	pipeline, err := ingestion.NewPipeline(splitter, embedder, store)
	if err != nil {
		return err
	}

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := pipeline.Ingest(ctx, ingestion.DocumentInput{
			DocID:           ingestDocID,
			Filename:        filepath.Base(path),
			Organization:    flagOrganization,
			Path:            path,
			SearchPrivilege: ingestPrivilege,
			Description:     ingestDescription,
			Content:         string(content),
		})
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}

		cmd.Printf("%s: doc_id=%s chunks=%d embed=%s total=%s\n",
			path, result.DocID, result.Stats.ChunkCount,
			result.Stats.EmbedTime.Round(timeRounding),
			result.Stats.TotalTime.Round(timeRounding))
	}

	return nil
}
