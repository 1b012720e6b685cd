package domain

// EmbeddingState records whether a chunk's embedding is present.
// A chunk of a ready document must never be silently missing its
// embedding: it is either embedded or explicitly unavailable.
type EmbeddingState string

const (
	// EmbeddingPending means the chunk has not been through the
	// embedding stage yet.
	EmbeddingPending EmbeddingState = "pending"

	// Embedded means the chunk carries a vector.
	Embedded EmbeddingState = "embedded"

	// EmbeddingUnavailable means the gateway failed for this chunk and
	// the failure was recorded rather than retried indefinitely.
	EmbeddingUnavailable EmbeddingState = "unavailable"
)

// ChunkMetadata holds per-chunk descriptive fields.
//
// Chunks produced by the semantic pipeline carry the full enrichment set
// and have Enriched=true. Chunks produced by the hybrid (fixed-window)
// pipeline carry positional fields only and have Enriched=false. The
// asymmetry is deliberate so consumers can tell which pipeline produced
// a chunk.
type ChunkMetadata struct {
	// KeyPhrases are salient terms extracted from the chunk.
	KeyPhrases []string

	// Topics are coarse subjects the chunk discusses.
	Topics []string

	// Entities are proper nouns detected in the chunk.
	Entities []string

	// Importance estimates how central the chunk is to its document (0-1).
	Importance float64

	// SemanticDensity estimates informational density (0-1).
	SemanticDensity float64

	// Coherence estimates intra-chunk sentence similarity (0-1).
	Coherence float64

	// Enriched marks chunks produced by the semantic pipeline.
	Enriched bool
}

// Chunk represents a searchable unit within a document.
// Documents are split into chunks for granular search results.
// Chunks are immutable once created except for metadata enrichment,
// which may be replaced as a whole.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset and EndOffset are byte offsets into the document
	// content covered by this chunk.
	StartOffset int
	EndOffset   int

	// Embedding is the vector representation for semantic search.
	// Nil unless EmbeddingState is Embedded.
	Embedding []float32

	// EmbeddingState records whether Embedding is present, pending,
	// or explicitly unavailable.
	EmbeddingState EmbeddingState

	// Metadata contains chunk-specific descriptive fields.
	Metadata ChunkMetadata
}

// HasEmbedding reports whether the chunk carries a usable vector.
func (c *Chunk) HasEmbedding() bool {
	return c.EmbeddingState == Embedded && len(c.Embedding) > 0
}

// validate checks the per-chunk invariants required of a ready document.
func (c *Chunk) validate() error {
	if c.Content == "" {
		return &ChunkStateError{DocumentID: c.DocumentID, ChunkID: c.ID, Reason: "chunk has no content"}
	}
	switch c.EmbeddingState {
	case Embedded:
		if len(c.Embedding) == 0 {
			return &ChunkStateError{DocumentID: c.DocumentID, ChunkID: c.ID, Reason: "chunk marked embedded but has no vector"}
		}
	case EmbeddingUnavailable:
		// Explicitly degraded; allowed.
	default:
		return &ChunkStateError{DocumentID: c.DocumentID, ChunkID: c.ID, Reason: "chunk embedding neither present nor marked unavailable"}
	}
	return nil
}
