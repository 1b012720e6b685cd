package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// ChunkIndex is the in-memory corpus the ranking and suggestion
// engines read. Documents become visible atomically: a document's
// chunks are published in one operation, only once its status is
// ready, so a concurrent search never observes a half-written
// document.
type ChunkIndex interface {
	// Publish makes a ready document and its chunks visible to search
	// in one atomic step. Publishing a document that is not ready, or
	// whose chunks violate the ready invariants, is rejected with
	// domain.ErrInvalidChunkState.
	Publish(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// Remove withdraws a document and its chunks from the corpus.
	Remove(ctx context.Context, documentID string) error

	// Documents returns the ready documents currently in the corpus.
	Documents(ctx context.Context) ([]domain.Document, error)

	// Chunks returns the published chunks of one document in position
	// order.
	Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// Fingerprint identifies the current corpus state. It changes on
	// every Publish and Remove, which is what invalidates search
	// caches keyed on it.
	Fingerprint() string
}
