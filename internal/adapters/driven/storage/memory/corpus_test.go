package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func readyDoc(id string) domain.Document {
	return domain.Document{ID: id, Title: "Doc " + id, Status: domain.StatusReady}
}

func embeddedChunk(id, docID string, position int) domain.Chunk {
	return domain.Chunk{
		ID:             id,
		DocumentID:     docID,
		Content:        "content of " + id,
		Position:       position,
		Embedding:      []float32{0.1, 0.2},
		EmbeddingState: domain.Embedded,
	}
}

func TestCorpusIndex_PublishAndRead(t *testing.T) {
	ctx := context.Background()
	idx := NewCorpusIndex()

	doc := readyDoc("d1")
	chunks := []domain.Chunk{embeddedChunk("c1", "d1", 0), embeddedChunk("c2", "d1", 1)}

	require.NoError(t, idx.Publish(ctx, doc, chunks))

	docs, err := idx.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)

	got, err := idx.Chunks(ctx, "d1")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCorpusIndex_PublishRejectsNonReady(t *testing.T) {
	ctx := context.Background()
	idx := NewCorpusIndex()

	doc := readyDoc("d1")
	doc.Status = domain.StatusEmbedding

	err := idx.Publish(ctx, doc, []domain.Chunk{embeddedChunk("c1", "d1", 0)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidChunkState))
}

func TestCorpusIndex_PublishRejectsInvalidChunks(t *testing.T) {
	ctx := context.Background()
	idx := NewCorpusIndex()

	err := idx.Publish(ctx, readyDoc("d1"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidChunkState))
}

func TestCorpusIndex_FingerprintChangesOnMutation(t *testing.T) {
	ctx := context.Background()
	idx := NewCorpusIndex()

	fp0 := idx.Fingerprint()

	require.NoError(t, idx.Publish(ctx, readyDoc("d1"), []domain.Chunk{embeddedChunk("c1", "d1", 0)}))
	fp1 := idx.Fingerprint()
	assert.NotEqual(t, fp0, fp1)

	require.NoError(t, idx.Remove(ctx, "d1"))
	fp2 := idx.Fingerprint()
	assert.NotEqual(t, fp1, fp2)

	// Removing an unknown document does not disturb the fingerprint.
	require.NoError(t, idx.Remove(ctx, "missing"))
	assert.Equal(t, fp2, idx.Fingerprint())
}

func TestCorpusIndex_ChunksUnknownDocument(t *testing.T) {
	idx := NewCorpusIndex()

	_, err := idx.Chunks(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCorpusIndex_PublishCopiesChunks(t *testing.T) {
	ctx := context.Background()
	idx := NewCorpusIndex()

	chunks := []domain.Chunk{embeddedChunk("c1", "d1", 0)}
	require.NoError(t, idx.Publish(ctx, readyDoc("d1"), chunks))

	// Mutating the caller's slice must not leak into the index.
	chunks[0].Content = "mutated"

	got, err := idx.Chunks(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "content of c1", got[0].Content)
}
