package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// The core treats it as a black-box document store with
// read-your-writes consistency within a single process.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, replacing any previous set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks. Deleting an
	// unknown id returns domain.ErrNotFound.
	DeleteDocument(ctx context.Context, id string) error

	// LoadDocuments returns every stored document.
	LoadDocuments(ctx context.Context) ([]domain.Document, error)

	// SaveDocuments stores a batch of documents.
	SaveDocuments(ctx context.Context, docs []domain.Document) error
}
