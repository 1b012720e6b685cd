package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// SegmenterService splits document content into chunks.
type SegmenterService interface {
	// Segment splits the document into ordered chunks using the given
	// mode. Semantic mode falls back to hybrid mode when the
	// embedding gateway is unavailable; the gateway failure is never
	// surfaced as a segmentation failure.
	Segment(ctx context.Context, doc *domain.Document, mode domain.SegmentMode, opts domain.SegmentOptions) ([]domain.Chunk, error)
}
