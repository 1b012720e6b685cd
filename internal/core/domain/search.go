package domain

// SearchMode selects how the three ranking signals are blended.
type SearchMode string

// Supported search modes.
const (
	// SearchModeSemantic ranks almost entirely on embedding similarity.
	SearchModeSemantic SearchMode = "semantic"

	// SearchModeLexical ranks almost entirely on token overlap.
	SearchModeLexical SearchMode = "lexical"

	// SearchModeHybrid blends all three signals with exact match
	// carrying the largest single weight.
	SearchModeHybrid SearchMode = "hybrid"

	// SearchModeBalanced blends all three signals more evenly,
	// still favouring exact matches over semantic noise.
	SearchModeBalanced SearchMode = "balanced"
)

// Confidence is the coarse human-facing bucket derived from the
// combined score. Consumers surface this label, not the raw score.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// SearchOptions configures a search query.
type SearchOptions struct {
	// Mode selects the signal blend. Defaults to SearchModeHybrid.
	Mode SearchMode

	// Limit is the maximum number of results. Defaults to 8.
	Limit int

	// MinScore drops results whose combined score falls below it.
	// Zero means the configured default threshold.
	MinScore float64

	// PerDocumentCap limits how many chunks of one document may
	// appear in the results. Zero means the configured default.
	PerDocumentCap int

	// ExpandQuery enables history-derived query expansion.
	ExpandQuery bool
}

// ScoredResult represents a single ranked search hit. It is produced
// per search call and never persisted.
type ScoredResult struct {
	// Document is the matched document.
	Document Document

	// Chunk is the specific chunk that matched.
	Chunk Chunk

	// SemanticScore is the cosine similarity between query and chunk
	// embeddings (0 when either embedding is unavailable).
	SemanticScore float64

	// LexicalScore is the normalised token overlap.
	LexicalScore float64

	// ExactScore boosts verbatim containment of the query.
	ExactScore float64

	// CombinedScore is the mode-weighted blend of the three signals.
	CombinedScore float64

	// MatchedTerms are the query terms found in the chunk.
	MatchedTerms []string

	// Confidence is the coarse bucket derived from CombinedScore.
	Confidence Confidence
}
