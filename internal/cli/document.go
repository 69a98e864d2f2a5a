package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	documentLimit  int
	documentOffset int
	documentJSON   bool
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage the document registry",
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered documents in the organization",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show one registry entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and all its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

func init() {
	documentListCmd.Flags().IntVarP(&documentLimit, "limit", "n", 50, "maximum entries")
	documentListCmd.Flags().IntVar(&documentOffset, "offset", 0, "pagination offset")
	documentCmd.PersistentFlags().BoolVar(&documentJSON, "json", false, "output as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, args []string) error {
	if err := requireOrganization(); err != nil {
		return err
	}

	ctx := context.Background()
	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	docs, total, err := d.docs.List(ctx, flagOrganization, documentLimit, documentOffset)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("%d documents (showing %d)\n", total, len(docs))
	for _, doc := range docs {
		cmd.Printf("  %s  %s  privilege=%d  created=%s\n",
			doc.DocID, doc.Filename, doc.SearchPrivilege,
			doc.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	d, err := openDeps(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	doc, err := d.docs.GetByDocID(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
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

	if err := store.DeleteDocument(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("deleted %s\n", args[0])
	return nil
}
