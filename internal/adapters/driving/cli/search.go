package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

var (
	searchLimit    int
	searchMode     string
	searchMinScore float64
	searchExpand   bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks every indexed chunk against the query on three signals:
semantic similarity, lexical term overlap, and exact containment.
The mode flag shifts the blend between them.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = default)")
	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "hybrid", "search mode: semantic, lexical, hybrid, balanced")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "minimum combined score (0 = default)")
	searchCmd.Flags().BoolVar(&searchExpand, "expand", false, "expand the query with related history terms")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	mode, err := parseSearchMode(searchMode)
	if err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Mode:        mode,
		Limit:       searchLimit,
		MinScore:    searchMinScore,
		ExpandQuery: searchExpand,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func parseSearchMode(s string) (domain.SearchMode, error) {
	switch domain.SearchMode(s) {
	case domain.SearchModeSemantic, domain.SearchModeLexical,
		domain.SearchModeHybrid, domain.SearchModeBalanced:
		return domain.SearchMode(s), nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		title := r.Document.Title
		if title == "" {
			title = r.Document.ID
		}

		cmd.Printf("  [%d] %s (%.2f, %s)\n", i+1, title, r.CombinedScore, r.Confidence)
		cmd.Printf("      %s\n", snippet(r.Chunk.Content, 120))
		if len(r.MatchedTerms) > 0 {
			cmd.Printf("      Matched: %v\n", r.MatchedTerms)
		}
		cmd.Println()
	}

	return nil
}

// snippet truncates content for single-line display.
func snippet(content string, maxRunes int) string {
	runes := []rune(content)
	if len(runes) <= maxRunes {
		return content
	}
	return string(runes[:maxRunes]) + "..."
}
