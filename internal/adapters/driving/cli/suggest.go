package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

var (
	suggestMax  int
	suggestJSON bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [partial]",
	Short: "Suggest query completions",
	Long: `Produces ranked suggestions for a partial query: completions from
the corpus vocabulary and search history, typo corrections, and
related topics from chunk metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestMax, "max", "n", 0, "maximum number of suggestions (0 = default)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output suggestions as JSON")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if suggestService == nil {
		return errors.New("suggestion service not configured")
	}

	suggestions, err := suggestService.Suggest(cmd.Context(), args[0], domain.SuggestOptions{
		MaxSuggestions: suggestMax,
	})
	if err != nil {
		return fmt.Errorf("suggest failed: %w", err)
	}

	if suggestJSON {
		data, err := json.MarshalIndent(suggestions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal suggestions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(suggestions) == 0 {
		cmd.Println("No suggestions.")
		return nil
	}

	for i := range suggestions {
		s := &suggestions[i]
		cmd.Printf("  %s (%s, %.2f)\n", s.Text, s.Type, s.Score)
		if s.Context != "" {
			cmd.Printf("      from: %s\n", s.Context)
		}
	}
	return nil
}
