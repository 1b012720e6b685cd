package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/adapters/driven/config/file"
	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/quarry/internal/core/scoring"
	"github.com/quarrylabs/quarry/internal/core/services"
)

// setupTestServices wires real services over in-memory stores and
// seeds one indexed document so commands produce output. The returned
// cleanup unwires everything and resets flag state.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	store := memory.NewDocumentStore()
	index := memory.NewCorpusIndex()
	history := memory.NewHistoryStore()
	cfg := scoring.DefaultConfig()

	segmenter := services.NewSegmenter(nil, cfg)
	ingest := services.NewIngestService(store, index, segmenter, nil)
	search := services.NewSearchService(index, nil, history, cfg)
	suggest := services.NewSuggestionService(index, history, cfg)

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	SetServices(Services{
		Ingest:    ingest,
		Search:    search,
		Suggest:   suggest,
		Segmenter: segmenter,
		Config:    configStore,
	})

	_, err = ingest.Ingest(context.Background(), "Vacation Policy",
		"Our vacation policy grants twenty days of paid vacation per year. "+
			"Unused vacation days roll over into the next year.",
		"")
	require.NoError(t, err)

	return func() {
		SetServices(Services{})
		resetFlags()
	}
}

// resetFlags restores package-level flag variables to their defaults
// so state does not leak between command executions.
func resetFlags() {
	searchLimit = 0
	searchMode = "hybrid"
	searchMinScore = 0
	searchExpand = false
	searchJSON = false
	suggestMax = 0
	suggestJSON = false
	addTitle = ""
	addMode = "hybrid"
	reprocessMode = "hybrid"
	segmentMode = "hybrid"
	segmentTitle = ""
	segmentJSON = false
	verboseFlag = false
}

// executeCommand runs the root command with args and captures output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
