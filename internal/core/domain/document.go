package domain

import "time"

// DocumentStatus tracks a document through the processing pipeline.
type DocumentStatus string

// Document processing states, in pipeline order.
const (
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusChunking   DocumentStatus = "chunking"
	StatusEmbedding  DocumentStatus = "embedding"
	StatusReady      DocumentStatus = "ready"
	StatusError      DocumentStatus = "error"
)

// DocumentMetadata holds document-level descriptive fields.
type DocumentMetadata struct {
	// Domain is a coarse topical area (e.g. "finance", "hr").
	Domain string

	// Keywords are caller-supplied or extracted descriptors.
	Keywords []string

	// Author is the document author, when known.
	Author string
}

// Document represents an ingested document and its chunks.
// It is the canonical representation after ingestion.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Title is the human-readable display name.
	Title string

	// Content is the full raw text content before chunking.
	Content string

	// Status is the current processing state.
	Status DocumentStatus

	// Metadata contains document-level descriptive fields.
	Metadata DocumentMetadata

	// ProcessingError holds the failure reason when Status is StatusError.
	ProcessingError string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// ValidateReady checks the integrity invariants of a ready document:
// it must have at least one chunk, and every chunk must either carry an
// embedding or be explicitly marked unavailable. A violation indicates an
// upstream processing bug and is surfaced as ErrInvalidChunkState.
func (d *Document) ValidateReady(chunks []Chunk) error {
	if d.Status != StatusReady {
		return nil
	}
	if len(chunks) == 0 {
		return &ChunkStateError{DocumentID: d.ID, Reason: "ready document has no chunks"}
	}
	for i := range chunks {
		if err := chunks[i].validate(); err != nil {
			return err
		}
	}
	return nil
}
