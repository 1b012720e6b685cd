// Command quarry is a local document index with hybrid search.
// It wires the storage, embedding and service layers together and
// hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/quarrylabs/quarry/internal/adapters/driven/config/file"
	"github.com/quarrylabs/quarry/internal/adapters/driven/embedding/ollama"
	"github.com/quarrylabs/quarry/internal/adapters/driven/embedding/openai"
	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/sqlite"
	"github.com/quarrylabs/quarry/internal/adapters/driving/cli"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/services"
	"github.com/quarrylabs/quarry/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	embedder := buildEmbedder(configStore)
	if embedder != nil {
		defer embedder.Close()
	}

	cfg := file.ScoringConfig(configStore)
	index := memory.NewCorpusIndex()

	segmenter := services.NewSegmenter(embedder, cfg)
	ingest := services.NewIngestService(store.DocumentStore(), index, segmenter, embedder)
	search := services.NewSearchService(index, embedder, store.QueryHistoryStore(), cfg)
	suggest := services.NewSuggestionService(index, store.QueryHistoryStore(), cfg)

	// Republish previously ingested documents into the in-memory index.
	if err := ingest.Rehydrate(context.Background()); err != nil {
		return fmt.Errorf("rehydrating index: %w", err)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:    ingest,
		Search:    search,
		Suggest:   suggest,
		Segmenter: segmenter,
		Config:    configStore,
	})

	return cli.Execute()
}

// buildEmbedder constructs the configured embedding gateway. A
// missing or unknown provider degrades to lexical-only operation.
func buildEmbedder(configStore driven.ConfigStore) driven.EmbeddingService {
	settings := file.ReadEmbeddingSettings(configStore)

	switch settings.Provider {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case "openai":
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			logger.Warn("OpenAI embedding disabled: %v", err)
			return nil
		}
		return svc
	case "none":
		return nil
	default:
		logger.Warn("Unknown embedding provider %q, running without embeddings", settings.Provider)
		return nil
	}
}
