package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/normalisers"
)

var (
	segmentMode  string
	segmentTitle string
	segmentJSON  bool
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Split a file into chunks without indexing it",
	Long: `Reads the file (or stdin when the argument is "-"), splits it into
chunks, and prints the chunk boundaries and metadata. Nothing is
added to the index; use this to preview how a document would be
chunked before ingesting it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func init() {
	segmentCmd.Flags().StringVarP(&segmentMode, "mode", "m", "hybrid", "chunking mode: hybrid, semantic")
	segmentCmd.Flags().StringVarP(&segmentTitle, "title", "t", "", "document title (defaults to the file name)")
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "output chunks as JSON")
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	if segmenterService == nil {
		return errors.New("segmenter service not configured")
	}

	mode, err := parseSegmentMode(segmentMode)
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

	if segmentTitle != "" {
		title = segmentTitle
	}
	if content == "" {
		return errors.New("nothing to segment")
	}

	doc := &domain.Document{ID: "preview", Title: title, Content: content}
	chunks, err := segmenterService.Segment(cmd.Context(), doc, mode, domain.SegmentOptions{})
	if err != nil {
		return fmt.Errorf("segmentation failed: %w", err)
	}

	if segmentJSON {
		return outputSegmentJSON(cmd, chunks)
	}

	return outputSegmentTable(cmd, title, chunks)
}

func outputSegmentJSON(cmd *cobra.Command, chunks []domain.Chunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSegmentTable(cmd *cobra.Command, title string, chunks []domain.Chunk) error {
	cmd.Printf("%q: %d chunk(s)\n", title, len(chunks))
	cmd.Println()
	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("  [%d] bytes %d-%d\n", c.Position, c.StartOffset, c.EndOffset)
		cmd.Printf("      %s\n", snippet(c.Content, 120))
		if c.Metadata.Enriched {
			if len(c.Metadata.KeyPhrases) > 0 {
				cmd.Printf("      Key phrases: %v\n", c.Metadata.KeyPhrases)
			}
			if len(c.Metadata.Topics) > 0 {
				cmd.Printf("      Topics: %v\n", c.Metadata.Topics)
			}
		}
		cmd.Println()
	}
	return nil
}
