package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// IngestService drives documents through the processing pipeline:
// uploading, processing, chunking, embedding, ready (or error).
type IngestService interface {
	// Ingest creates a document from raw content, processes it, and
	// publishes it to the chunk index once ready. The returned
	// document reflects the final status.
	Ingest(ctx context.Context, title, content string, mode domain.SegmentMode) (*domain.Document, error)

	// Remove deletes a document from the store and withdraws it from
	// the chunk index.
	Remove(ctx context.Context, documentID string) error

	// Reprocess re-runs segmentation and embedding for a stored
	// document, republishing the result.
	Reprocess(ctx context.Context, documentID string, mode domain.SegmentMode) (*domain.Document, error)

	// List returns all stored documents.
	List(ctx context.Context) ([]domain.Document, error)
}
