package scoring

import "github.com/quarrylabs/quarry/internal/core/domain"

// Weights is one blend of the three ranking signals. The three fields
// should sum to 1 so combined scores stay in the 0-1 range.
type Weights struct {
	Semantic float64
	Lexical  float64
	Exact    float64
}

// Config consolidates every scoring constant used across the engine.
// The defaults are a reasonable baseline, not a mandated exact match;
// they can be overridden from the config file.
type Config struct {
	// ModeWeights maps each search mode to its signal blend.
	ModeWeights map[domain.SearchMode]Weights

	// MinScore is the default combined-score floor for search results.
	MinScore float64

	// HighConfidence and MediumConfidence are the confidence bucket
	// cut points (high >= HighConfidence, medium >= MediumConfidence).
	HighConfidence   float64
	MediumConfidence float64

	// PerDocumentCap is the default maximum number of chunks one
	// document may contribute to a result list.
	PerDocumentCap int

	// ResultLimit is the default maximum result count.
	ResultLimit int

	// SimilarityThreshold is the default semantic-chunking centroid
	// similarity floor.
	SimilarityThreshold float64

	// TokenBudget and TokenOverlap are the hybrid-chunking defaults,
	// in estimated tokens.
	TokenBudget  int
	TokenOverlap int

	// TargetTokens and MinTokens bound semantic chunk sizes.
	TargetTokens int
	MinTokens    int

	// CharsPerToken is the deterministic character-to-token estimate.
	CharsPerToken int
}

// DefaultConfig returns the baseline scoring configuration.
func DefaultConfig() Config {
	return Config{
		ModeWeights: map[domain.SearchMode]Weights{
			domain.SearchModeSemantic: {Semantic: 0.9, Lexical: 0.05, Exact: 0.05},
			domain.SearchModeLexical:  {Semantic: 0.05, Lexical: 0.9, Exact: 0.05},
			// Exact match carries the largest single weight so literal
			// lookups (names, codes) are not buried by semantic noise.
			domain.SearchModeHybrid:   {Semantic: 0.3, Lexical: 0.25, Exact: 0.45},
			domain.SearchModeBalanced: {Semantic: 0.3, Lexical: 0.3, Exact: 0.4},
		},
		MinScore:            0.15,
		HighConfidence:      0.75,
		MediumConfidence:    0.4,
		PerDocumentCap:      3,
		ResultLimit:         8,
		SimilarityThreshold: 0.7,
		TokenBudget:         512,
		TokenOverlap:        50,
		TargetTokens:        400,
		MinTokens:           100,
		CharsPerToken:       4,
	}
}

// WeightsFor returns the blend for a mode, falling back to hybrid for
// unknown modes.
func (c Config) WeightsFor(mode domain.SearchMode) Weights {
	if w, ok := c.ModeWeights[mode]; ok {
		return w
	}
	return c.ModeWeights[domain.SearchModeHybrid]
}

// Confidence buckets a combined score into the human-facing label.
func (c Config) Confidence(score float64) domain.Confidence {
	switch {
	case score >= c.HighConfidence:
		return domain.ConfidenceHigh
	case score >= c.MediumConfidence:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// EstimateTokens converts a character count to an estimated token count
// using the deterministic heuristic (~4 characters per token). It never
// consults an external tokenizer, so segmentation never blocks.
func (c Config) EstimateTokens(text string) int {
	cpt := c.CharsPerToken
	if cpt <= 0 {
		cpt = 4
	}
	n := len(text) / cpt
	if n == 0 && len(text) > 0 {
		n = 1
	}
	return n
}
