package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/normalisers"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
}

var (
	addTitle string
	addMode  string
)

var documentAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Ingest a file into the index",
	Long: `Reads the file (or stdin when the argument is "-"), splits it into
chunks, embeds them, and publishes the document to the search index.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentAdd,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentRemoveCmd = &cobra.Command{
	Use:   "remove [document-id]",
	Short: "Remove a document from the index and store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentRemove,
}

var reprocessMode string

var documentReprocessCmd = &cobra.Command{
	Use:   "reprocess [document-id]",
	Short: "Re-run chunking and embedding for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReprocess,
}

func init() {
	documentAddCmd.Flags().StringVarP(&addTitle, "title", "t", "", "document title (defaults to file name)")
	documentAddCmd.Flags().StringVarP(&addMode, "chunking", "c", "hybrid", "chunking mode: hybrid or semantic")
	documentReprocessCmd.Flags().StringVarP(&reprocessMode, "chunking", "c", "hybrid", "chunking mode: hybrid or semantic")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentRemoveCmd)
	documentCmd.AddCommand(documentReprocessCmd)
	rootCmd.AddCommand(documentCmd)
}

func parseSegmentMode(s string) (domain.SegmentMode, error) {
	switch domain.SegmentMode(s) {
	case domain.SegmentHybrid, domain.SegmentSemantic:
		return domain.SegmentMode(s), nil
	default:
		return "", fmt.Errorf("unknown chunking mode %q", s)
	}
}

func runDocumentAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	mode, err := parseSegmentMode(addMode)
	if err != nil {
		return err
	}

	path := args[0]
	var title, content string

	if path == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		title, content = "stdin", string(raw)
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		result, err := normalisers.ForPath(path).Normalise(raw, path)
		if err != nil {
			return fmt.Errorf("normalising %s: %w", path, err)
		}
		title, content = result.Title, result.Content
	}

	if addTitle != "" {
		title = addTitle
	}

	doc, err := ingestService.Ingest(cmd.Context(), title, content, mode)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Indexed %q as %s (%s)\n", doc.Title, doc.ID, doc.Status)
	return nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	docs, err := ingestService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	for i := range docs {
		doc := &docs[i]
		cmd.Printf("  %s  %-12s %s\n", doc.ID, doc.Status, doc.Title)
		if doc.Status == domain.StatusError && doc.ProcessingError != "" {
			cmd.Printf("      error: %s\n", doc.ProcessingError)
		}
	}
	return nil
}

func runDocumentRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if err := ingestService.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}
	cmd.Printf("Removed %s\n", args[0])
	return nil
}

func runDocumentReprocess(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	mode, err := parseSegmentMode(reprocessMode)
	if err != nil {
		return err
	}

	doc, err := ingestService.Reprocess(cmd.Context(), args[0], mode)
	if err != nil {
		return fmt.Errorf("reprocessing document: %w", err)
	}
	cmd.Printf("Reprocessed %s (%s)\n", doc.ID, doc.Status)
	return nil
}
