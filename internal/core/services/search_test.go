package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/scoring"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// It returns perText vectors when set, falling back to embedding.
type mockEmbeddingService struct {
	embedding  []float32
	perText    map[string][]float32
	embedErr   error
	embedCalls int
	dims       int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.perText[text]; ok {
		return v, nil
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.perText[text]; ok {
			result[i] = v
		} else {
			result[i] = m.embedding
		}
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int             { return m.dims }
func (m *mockEmbeddingService) ModelName() string           { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return m.embedErr }
func (m *mockEmbeddingService) Close() error                { return nil }

// stubIndex implements driven.ChunkIndex without publish-time
// validation, so tests can stage integrity violations.
type stubIndex struct {
	docs        []domain.Document
	chunksByDoc map[string][]domain.Chunk
	fingerprint string
}

func (s *stubIndex) Publish(_ context.Context, _ domain.Document, _ []domain.Chunk) error { return nil }
func (s *stubIndex) Remove(_ context.Context, _ string) error                             { return nil }
func (s *stubIndex) Documents(_ context.Context) ([]domain.Document, error)               { return s.docs, nil }
func (s *stubIndex) Chunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	return s.chunksByDoc[documentID], nil
}
func (s *stubIndex) Fingerprint() string { return s.fingerprint }

// --- Helpers ---

func readyDoc(id, title string) domain.Document {
	return domain.Document{ID: id, Title: title, Status: domain.StatusReady}
}

func lexChunk(id, docID, content string, position int) domain.Chunk {
	return domain.Chunk{
		ID:             id,
		DocumentID:     docID,
		Content:        content,
		Position:       position,
		EmbeddingState: domain.EmbeddingUnavailable,
	}
}

func vecChunk(id, docID, content string, position int, embedding []float32) domain.Chunk {
	return domain.Chunk{
		ID:             id,
		DocumentID:     docID,
		Content:        content,
		Position:       position,
		Embedding:      embedding,
		EmbeddingState: domain.Embedded,
	}
}

func publish(t *testing.T, idx *memory.CorpusIndex, doc domain.Document, chunks ...domain.Chunk) {
	t.Helper()
	require.NoError(t, idx.Publish(context.Background(), doc, chunks))
}

// --- Tests ---

func TestSearch_EmptyQueryShortCircuits(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"), lexChunk("c1", "d1", "some content here", 0))

	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(idx, embedder, nil, scoring.DefaultConfig())

	for _, query := range []string{"", "   ", "\t\n"} {
		results, err := svc.Search(context.Background(), query, domain.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	}

	// The gateway must not be touched for empty queries.
	assert.Zero(t, embedder.embedCalls)
}

func TestSearch_EmptyCorpus(t *testing.T) {
	svc := NewSearchService(memory.NewCorpusIndex(), nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "anything", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_NoMatchAboveThreshold(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"), lexChunk("c1", "d1", "completely unrelated topic", 0))

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "quantum flux capacitor", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_SortedWithStableTieBreaks(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"),
		lexChunk("c1", "d1", "revenue growth was strong", 0),
		lexChunk("c2", "d1", "revenue", 1),
		lexChunk("c3", "d1", "revenue growth", 2),
	)

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "revenue growth", domain.SearchOptions{Mode: domain.SearchModeLexical})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		prev, curr := results[i-1], results[i]
		assert.GreaterOrEqual(t, prev.CombinedScore, curr.CombinedScore)
		if prev.CombinedScore == curr.CombinedScore {
			if prev.ExactScore == curr.ExactScore {
				assert.Less(t, prev.Chunk.Position, curr.Chunk.Position)
			} else {
				assert.Greater(t, prev.ExactScore, curr.ExactScore)
			}
		}
	}
}

func TestSearch_PerDocumentCap(t *testing.T) {
	idx := memory.NewCorpusIndex()

	chunks := make([]domain.Chunk, 10)
	for i := range chunks {
		chunks[i] = lexChunk(
			"c"+string(rune('0'+i)), "d1",
			"team onboarding checklist item", i,
		)
	}
	publish(t, idx, readyDoc("d1", "Onboarding"), chunks...)

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "onboarding checklist", domain.SearchOptions{
		Mode:  domain.SearchModeLexical,
		Limit: 10,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 3)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].CombinedScore, results[i].CombinedScore)
	}
}

func TestSearch_PerDocumentCapAcrossDocuments(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc One"),
		lexChunk("a1", "d1", "expense policy travel", 0),
		lexChunk("a2", "d1", "expense policy meals", 1),
		lexChunk("a3", "d1", "expense policy hotels", 2),
		lexChunk("a4", "d1", "expense policy flights", 3),
	)
	publish(t, idx, readyDoc("d2", "Doc Two"),
		lexChunk("b1", "d2", "expense policy summary", 0),
	)

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "expense policy", domain.SearchOptions{
		Mode:  domain.SearchModeLexical,
		Limit: 10,
	})
	require.NoError(t, err)

	perDoc := map[string]int{}
	for _, r := range results {
		perDoc[r.Document.ID]++
	}
	assert.LessOrEqual(t, perDoc["d1"], 3)
	assert.Equal(t, 1, perDoc["d2"])
}

func TestSearch_ExactMatchPrecedenceInHybrid(t *testing.T) {
	// A contains the literal query; B only has perfect semantic
	// similarity. In hybrid mode A must outrank B.
	query := "acme corp invoice 4711"
	queryVec := []float32{1, 0, 0}

	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Invoices"),
		vecChunk("a", "d1", "Payment for Acme Corp invoice 4711 is overdue.", 0, []float32{0, 1, 0}),
		vecChunk("b", "d1", "Billing reminder about an outstanding payment.", 1, queryVec),
	)

	embedder := &mockEmbeddingService{embedding: queryVec, dims: 3}
	svc := NewSearchService(idx, embedder, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), query, domain.SearchOptions{Mode: domain.SearchModeHybrid})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "a", results[0].Chunk.ID)
	assert.Equal(t, 1.0, results[0].ExactScore)

	if len(results) > 1 && results[1].Chunk.ID == "b" {
		assert.Greater(t, results[0].CombinedScore, results[1].CombinedScore)
	}
}

func TestSearch_SemanticModeRanksBySimilarity(t *testing.T) {
	queryVec := []float32{1, 0}

	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"),
		vecChunk("near", "d1", "falcon migration patterns", 0, []float32{1, 0}),
		vecChunk("far", "d1", "kitchen renovation budget", 1, []float32{0, 1}),
	)

	embedder := &mockEmbeddingService{embedding: queryVec, dims: 2}
	svc := NewSearchService(idx, embedder, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "bird travel", domain.SearchOptions{Mode: domain.SearchModeSemantic})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "near", results[0].Chunk.ID)
}

func TestSearch_GatewayFailureDegradesToLexical(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"),
		vecChunk("c1", "d1", "incident response runbook", 0, []float32{1, 0}),
	)

	embedder := &mockEmbeddingService{embedErr: errors.New("connection refused")}
	svc := NewSearchService(idx, embedder, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "incident response", domain.SearchOptions{Mode: domain.SearchModeHybrid})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Semantic signal degraded to zero, lexical still carried the hit.
	assert.Zero(t, results[0].SemanticScore)
	assert.Positive(t, results[0].LexicalScore)
}

func TestSearch_MissingEmbeddingScoresZeroSemantic(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"),
		lexChunk("c1", "d1", "quarterly revenue report", 0),
	)

	embedder := &mockEmbeddingService{embedding: []float32{1, 0}}
	svc := NewSearchService(idx, embedder, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "quarterly revenue", domain.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Zero(t, results[0].SemanticScore)
}

func TestSearch_InvalidChunkStateSurfaced(t *testing.T) {
	// A ready document with no chunks is an upstream processing bug
	// and must surface, not be silently skipped.
	idx := &stubIndex{
		docs:        []domain.Document{readyDoc("d1", "Broken")},
		chunksByDoc: map[string][]domain.Chunk{},
		fingerprint: "fp1",
	}

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	_, err := svc.Search(context.Background(), "anything at all", domain.SearchOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidChunkState))
}

func TestSearch_CacheServesRepeatAndInvalidatesOnCorpusChange(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"), lexChunk("c1", "d1", "vacation policy details", 0))

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())
	opts := domain.SearchOptions{Mode: domain.SearchModeLexical}

	first, err := svc.Search(ctx, "vacation policy", opts)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Search(ctx, "vacation policy", opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Corpus change rotates the fingerprint, so the cached entry no
	// longer matches and the new document appears.
	publish(t, idx, readyDoc("d2", "Doc Two"), lexChunk("c2", "d2", "vacation policy addendum", 0))

	third, err := svc.Search(ctx, "vacation policy", opts)
	require.NoError(t, err)
	assert.Len(t, third, 2)
}

func TestSearch_RecordsQueryHistory(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"), lexChunk("c1", "d1", "remote work guidelines", 0))

	history := memory.NewHistoryStore()
	svc := NewSearchService(idx, nil, history, scoring.DefaultConfig())

	_, err := svc.Search(ctx, "remote work", domain.SearchOptions{})
	require.NoError(t, err)

	entries, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "remote work", entries[0].Query)
}

func TestSearch_RepeatedQueryAppendsHistoryEachTime(t *testing.T) {
	ctx := context.Background()
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"), lexChunk("c1", "d1", "vacation policy details", 0))

	history := memory.NewHistoryStore()
	svc := NewSearchService(idx, nil, history, scoring.DefaultConfig())

	// Second call is served from cache but still counts toward
	// popularity.
	_, err := svc.Search(ctx, "vacation policy", domain.SearchOptions{})
	require.NoError(t, err)
	_, err = svc.Search(ctx, "vacation policy", domain.SearchOptions{})
	require.NoError(t, err)

	entries, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vacation policy", entries[0].Query)
	assert.Equal(t, "vacation policy", entries[1].Query)
}

func TestSearch_ConfidenceBuckets(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "Doc"),
		lexChunk("c1", "d1", "error budget policy", 0),
	)

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "error budget policy", domain.SearchOptions{Mode: domain.SearchModeLexical})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	// Exact containment plus full overlap in lexical mode lands high.
	assert.Equal(t, domain.ConfidenceHigh, results[0].Confidence)
	assert.GreaterOrEqual(t, results[0].CombinedScore, 0.75)
}

func TestSearch_LimitApplied(t *testing.T) {
	idx := memory.NewCorpusIndex()
	publish(t, idx, readyDoc("d1", "One"), lexChunk("c1", "d1", "budget planning", 0))
	publish(t, idx, readyDoc("d2", "Two"), lexChunk("c2", "d2", "budget planning", 0))
	publish(t, idx, readyDoc("d3", "Three"), lexChunk("c3", "d3", "budget planning", 0))

	svc := NewSearchService(idx, nil, nil, scoring.DefaultConfig())

	results, err := svc.Search(context.Background(), "budget planning", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
