// Package cli implements the quarry command-line interface using cobra.
// Commands are thin adapters: they parse flags, call the driving ports,
// and format output. All domain behaviour lives in the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services the commands call. Wired by the composition root before
// Execute runs; commands guard against missing wiring so a partially
// configured binary fails with a clear message instead of a panic.
var (
	ingestService    driving.IngestService
	searchService    driving.SearchService
	suggestService   driving.SuggestionService
	segmenterService driving.SegmenterService
	configStore      driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Local document index with hybrid search",
	Long: `Quarry ingests documents, splits them into chunks, and serves
hybrid semantic and lexical search plus query suggestions over the
indexed corpus. Everything runs locally; embeddings come from a
configurable gateway (Ollama by default).`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
}

// Services bundles everything the commands need.
type Services struct {
	Ingest    driving.IngestService
	Search    driving.SearchService
	Suggest   driving.SuggestionService
	Segmenter driving.SegmenterService
	Config    driven.ConfigStore
}

// SetServices wires the driving ports into the command tree.
func SetServices(s Services) {
	ingestService = s.Ingest
	searchService = s.Search
	suggestService = s.Suggest
	segmenterService = s.Segmenter
	configStore = s.Config
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
