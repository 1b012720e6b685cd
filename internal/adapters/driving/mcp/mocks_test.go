package mcp

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.ScoredResult
	err     error
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	_ domain.SearchOptions,
) ([]domain.ScoredResult, error) {
	return m.results, m.err
}

// mockSuggestService is a mock implementation of driving.SuggestionService.
type mockSuggestService struct {
	suggestions []domain.Suggestion
	recorded    []string
	err         error
}

func (m *mockSuggestService) Suggest(
	_ context.Context,
	_ string,
	_ domain.SuggestOptions,
) ([]domain.Suggestion, error) {
	return m.suggestions, m.err
}

func (m *mockSuggestService) RecordSelection(_ context.Context, text string) error {
	m.recorded = append(m.recorded, text)
	return m.err
}

// mockSegmenterService is a mock implementation of driving.SegmenterService.
type mockSegmenterService struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockSegmenterService) Segment(
	_ context.Context,
	_ *domain.Document,
	_ domain.SegmentMode,
	_ domain.SegmentOptions,
) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	documents []domain.Document
	document  *domain.Document
	err       error
}

func (m *mockIngestService) Ingest(
	_ context.Context,
	_, _ string,
	_ domain.SegmentMode,
) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockIngestService) Remove(_ context.Context, _ string) error {
	return m.err
}

func (m *mockIngestService) Reprocess(
	_ context.Context,
	_ string,
	_ domain.SegmentMode,
) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockIngestService) List(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}
