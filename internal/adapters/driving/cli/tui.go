package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search prompt",
	Long: `Launch the interactive terminal prompt for searching the corpus.

Suggestions appear as you type (debounced); search runs on enter.

Controls:
  ↑/↓   - Select a suggestion
  Tab   - Accept the selected suggestion
  Enter - Search
  Esc   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}
	return tui.Run(cmd.Context(), searchService, suggestService)
}
