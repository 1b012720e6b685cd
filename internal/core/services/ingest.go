package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService drives documents through the processing pipeline and
// publishes them to the chunk index. A document's chunks become
// visible to search atomically, only once its status is ready.
type IngestService struct {
	store     driven.DocumentStore
	index     driven.ChunkIndex
	segmenter driving.SegmenterService
	embedder  driven.EmbeddingService
}

// NewIngestService creates a new ingest service. The embedder is
// optional; without it every chunk is marked embedding-unavailable and
// search degrades to its lexical signals.
func NewIngestService(
	store driven.DocumentStore,
	index driven.ChunkIndex,
	segmenter driving.SegmenterService,
	embedder driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		store:     store,
		index:     index,
		segmenter: segmenter,
		embedder:  embedder,
	}
}

// Ingest creates a document from raw content and processes it to ready.
func (s *IngestService) Ingest(
	ctx context.Context, title, content string, mode domain.SegmentMode,
) (*domain.Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty document content", domain.ErrInvalidInput)
	}
	if mode == "" {
		mode = domain.SegmentHybrid
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Status:    domain.StatusUploading,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}

	return s.process(ctx, doc, mode)
}

// Reprocess re-runs segmentation and embedding for a stored document.
func (s *IngestService) Reprocess(
	ctx context.Context, documentID string, mode domain.SegmentMode,
) (*domain.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", documentID, err)
	}
	if mode == "" {
		mode = domain.SegmentHybrid
	}

	// Withdraw the old version so searches never mix old and new chunks.
	if err := s.index.Remove(ctx, documentID); err != nil {
		return nil, fmt.Errorf("withdrawing document %s: %w", documentID, err)
	}

	return s.process(ctx, doc, mode)
}

// Remove deletes a document from the store and the chunk index.
func (s *IngestService) Remove(ctx context.Context, documentID string) error {
	if err := s.index.Remove(ctx, documentID); err != nil {
		return fmt.Errorf("removing from index: %w", err)
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("removing from store: %w", err)
	}
	return nil
}

// List returns all stored documents.
func (s *IngestService) List(ctx context.Context) ([]domain.Document, error) {
	return s.store.LoadDocuments(ctx)
}

// Rehydrate republishes stored ready documents into the chunk index.
// Called once at startup so a restarted process serves its persisted
// corpus.
func (s *IngestService) Rehydrate(ctx context.Context) error {
	docs, err := s.store.LoadDocuments(ctx)
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}

	published := 0
	for i := range docs {
		if docs[i].Status != domain.StatusReady {
			continue
		}
		chunks, err := s.store.GetChunks(ctx, docs[i].ID)
		if err != nil {
			return fmt.Errorf("loading chunks for %s: %w", docs[i].ID, err)
		}
		if err := s.index.Publish(ctx, docs[i], chunks); err != nil {
			return fmt.Errorf("publishing %s: %w", docs[i].ID, err)
		}
		published++
	}

	logger.Info("Rehydrated %d ready documents", published)
	return nil
}

// process runs the chunking and embedding stages, persisting each
// status transition, and publishes the result.
func (s *IngestService) process(
	ctx context.Context, doc *domain.Document, mode domain.SegmentMode,
) (*domain.Document, error) {
	s.setStatus(ctx, doc, domain.StatusProcessing)

	// Chunking stage.
	s.setStatus(ctx, doc, domain.StatusChunking)
	chunks, err := s.segmenter.Segment(ctx, doc, mode, domain.SegmentOptions{})
	if err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("segmenting: %w", err))
	}
	if len(chunks) == 0 {
		return doc, s.fail(ctx, doc, fmt.Errorf("%w: document produced no chunks", domain.ErrInvalidInput))
	}

	// Embedding stage. Gateway failure degrades chunks to
	// embedding-unavailable rather than failing the document.
	s.setStatus(ctx, doc, domain.StatusEmbedding)
	s.embedChunks(ctx, chunks)

	doc.Status = domain.StatusReady
	doc.ProcessingError = ""
	doc.UpdatedAt = time.Now().UTC()

	if err := doc.ValidateReady(chunks); err != nil {
		return doc, s.fail(ctx, doc, err)
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("saving document: %w", err))
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("saving chunks: %w", err))
	}

	// Publication is the atomic visibility point for search.
	if err := s.index.Publish(ctx, *doc, chunks); err != nil {
		return doc, s.fail(ctx, doc, fmt.Errorf("publishing: %w", err))
	}

	logger.Info("Document %s ready: %d chunks", doc.ID, len(chunks))
	return doc, nil
}

// embedChunks attaches embeddings to chunks, marking the whole batch
// unavailable when the gateway cannot serve it.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) {
	if s.embedder == nil {
		markUnavailable(chunks)
		return
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil || len(embeddings) != len(chunks) {
		logger.Warn("Embedding batch failed: %v (marking %d chunks unavailable)", err, len(chunks))
		markUnavailable(chunks)
		return
	}

	for i := range chunks {
		if len(embeddings[i]) == 0 {
			chunks[i].EmbeddingState = domain.EmbeddingUnavailable
			continue
		}
		chunks[i].Embedding = embeddings[i]
		chunks[i].EmbeddingState = domain.Embedded
	}
}

// markUnavailable records the degraded embedding state explicitly;
// a ready chunk is never silently missing its vector.
func markUnavailable(chunks []domain.Chunk) {
	for i := range chunks {
		chunks[i].Embedding = nil
		chunks[i].EmbeddingState = domain.EmbeddingUnavailable
	}
}

// setStatus advances the pipeline status and persists it best-effort.
func (s *IngestService) setStatus(ctx context.Context, doc *domain.Document, status domain.DocumentStatus) {
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Persisting status %s for %s failed: %v", status, doc.ID, err)
	}
}

// fail records the error status and returns the cause.
func (s *IngestService) fail(ctx context.Context, doc *domain.Document, cause error) error {
	doc.Status = domain.StatusError
	doc.ProcessingError = cause.Error()
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Persisting error status for %s failed: %v", doc.ID, err)
	}
	return cause
}
