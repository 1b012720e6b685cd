// Package memory provides in-memory implementations of the storage
// ports, used by tests and as the live chunk index.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure CorpusIndex implements the interface.
var _ driven.ChunkIndex = (*CorpusIndex)(nil)

// CorpusIndex is the in-memory ready corpus read by the ranking and
// suggestion engines. Documents are published and removed whole under
// one lock, so concurrent readers never observe a half-written
// document. The fingerprint is bumped on every mutation, invalidating
// search caches keyed on it.
type CorpusIndex struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	version   uint64
}

// NewCorpusIndex creates an empty corpus index.
func NewCorpusIndex() *CorpusIndex {
	return &CorpusIndex{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
	}
}

// Publish makes a ready document and its chunks visible atomically.
func (c *CorpusIndex) Publish(_ context.Context, doc domain.Document, chunks []domain.Chunk) error {
	if doc.Status != domain.StatusReady {
		return &domain.ChunkStateError{DocumentID: doc.ID, Reason: fmt.Sprintf("published with status %q", doc.Status)}
	}
	if err := doc.ValidateReady(chunks); err != nil {
		return err
	}

	copied := make([]domain.Chunk, len(chunks))
	copy(copied, chunks)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = doc
	c.chunks[doc.ID] = copied
	c.version++
	return nil
}

// Remove withdraws a document from the corpus. Removing an unknown
// document is a no-op.
func (c *CorpusIndex) Remove(_ context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.documents[documentID]; !ok {
		return nil
	}
	delete(c.documents, documentID)
	delete(c.chunks, documentID)
	c.version++
	return nil
}

// Documents returns the ready documents currently in the corpus.
func (c *CorpusIndex) Documents(_ context.Context) ([]domain.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Document, 0, len(c.documents))
	for id := range c.documents {
		out = append(out, c.documents[id])
	}
	return out, nil
}

// Chunks returns the published chunks of one document.
func (c *CorpusIndex) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chunks, ok := c.chunks[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]domain.Chunk, len(chunks))
	copy(out, chunks)
	return out, nil
}

// Fingerprint identifies the current corpus state.
func (c *CorpusIndex) Fingerprint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("v%d-n%d", c.version, len(c.documents))
}
