package domain

// SegmentMode selects the chunking strategy.
type SegmentMode string

const (
	// SegmentHybrid splits by fixed token windows with overlap. It
	// needs no external capability and is the default.
	SegmentHybrid SegmentMode = "hybrid"

	// SegmentSemantic groups sentences by embedding similarity. It
	// requires the embedding gateway and falls back to SegmentHybrid
	// when the gateway is unavailable.
	SegmentSemantic SegmentMode = "semantic"
)

// SegmentOptions configures segmentation. Zero values mean the
// configured defaults.
type SegmentOptions struct {
	// TokenBudget is the window size for hybrid mode, in estimated
	// tokens. Defaults to 512.
	TokenBudget int

	// TokenOverlap is the overlap between adjacent hybrid windows,
	// in estimated tokens. Defaults to 50.
	TokenOverlap int

	// SimilarityThreshold is the minimum cosine similarity to the
	// running centroid for a sentence to join the current semantic
	// chunk. Defaults to 0.7.
	SimilarityThreshold float64

	// TargetTokens is the semantic chunk size ceiling in estimated
	// tokens. Defaults to 400.
	TargetTokens int

	// MinTokens is the semantic chunk size floor in estimated tokens.
	// A similarity break below this floor is ignored. Defaults to 100.
	MinTokens int
}
