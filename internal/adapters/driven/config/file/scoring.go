package file

import (
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/scoring"
)

// Configuration keys for ranking and chunking thresholds.
const (
	KeySearchMinScore         = "search.min_score"
	KeySearchResultLimit      = "search.result_limit"
	KeySearchPerDocumentCap   = "search.per_document_cap"
	KeySearchHighConfidence   = "search.high_confidence"
	KeySearchMediumConfidence = "search.medium_confidence"

	KeyChunkingTokenBudget         = "chunking.token_budget"
	KeyChunkingTokenOverlap        = "chunking.token_overlap"
	KeyChunkingTargetTokens        = "chunking.target_tokens"
	KeyChunkingMinTokens           = "chunking.min_tokens"
	KeyChunkingCharsPerToken       = "chunking.chars_per_token"
	KeyChunkingSimilarityThreshold = "chunking.similarity_threshold"
)

// Embedding gateway configuration keys.
const (
	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingAPIKey   = "embedding.api_key"
)

// ScoringConfig overlays configured thresholds on the scoring defaults.
// Keys that are absent or zero keep their default, so a config file only
// needs the values it changes.
func ScoringConfig(store driven.ConfigStore) scoring.Config {
	cfg := scoring.DefaultConfig()

	if v := store.GetFloat(KeySearchMinScore); v > 0 {
		cfg.MinScore = v
	}
	if v := store.GetInt(KeySearchResultLimit); v > 0 {
		cfg.ResultLimit = v
	}
	if v := store.GetInt(KeySearchPerDocumentCap); v > 0 {
		cfg.PerDocumentCap = v
	}
	if v := store.GetFloat(KeySearchHighConfidence); v > 0 {
		cfg.HighConfidence = v
	}
	if v := store.GetFloat(KeySearchMediumConfidence); v > 0 {
		cfg.MediumConfidence = v
	}

	if v := store.GetInt(KeyChunkingTokenBudget); v > 0 {
		cfg.TokenBudget = v
	}
	if v := store.GetInt(KeyChunkingTokenOverlap); v > 0 {
		cfg.TokenOverlap = v
	}
	if v := store.GetInt(KeyChunkingTargetTokens); v > 0 {
		cfg.TargetTokens = v
	}
	if v := store.GetInt(KeyChunkingMinTokens); v > 0 {
		cfg.MinTokens = v
	}
	if v := store.GetInt(KeyChunkingCharsPerToken); v > 0 {
		cfg.CharsPerToken = v
	}
	if v := store.GetFloat(KeyChunkingSimilarityThreshold); v > 0 && v <= 1 {
		cfg.SimilarityThreshold = v
	}

	return cfg
}

// EmbeddingSettings holds the configured embedding gateway.
type EmbeddingSettings struct {
	Provider string
	BaseURL  string
	Model    string
	APIKey   string
}

// ReadEmbeddingSettings reads the embedding gateway configuration.
// Provider defaults to "ollama".
func ReadEmbeddingSettings(store driven.ConfigStore) EmbeddingSettings {
	settings := EmbeddingSettings{
		Provider: store.GetString(KeyEmbeddingProvider),
		BaseURL:  store.GetString(KeyEmbeddingBaseURL),
		Model:    store.GetString(KeyEmbeddingModel),
		APIKey:   store.GetString(KeyEmbeddingAPIKey),
	}
	if settings.Provider == "" {
		settings.Provider = "ollama"
	}
	return settings
}
