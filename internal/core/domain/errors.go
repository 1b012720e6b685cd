package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGatewayUnavailable indicates the embedding gateway is
	// unreachable or timed out. Callers recover locally: semantic
	// chunking falls back to hybrid chunking, and semantic search
	// scores degrade to zero instead of failing the search.
	ErrGatewayUnavailable = errors.New("embedding gateway unavailable")

	// ErrInvalidChunkState indicates a data-integrity violation: a
	// ready document with no chunks, or a chunk missing required
	// fields. Unlike gateway failures this is surfaced to the caller
	// so reprocessing can be triggered.
	ErrInvalidChunkState = errors.New("invalid chunk state")

	// ErrHistoryUnavailable indicates the query history source is
	// unreadable. The suggestion engine recovers by returning an
	// empty list; it never blocks the input field.
	ErrHistoryUnavailable = errors.New("query history unavailable")
)

// ChunkStateError describes which document (and chunk) violated the
// ready-document integrity invariants. It unwraps to ErrInvalidChunkState.
type ChunkStateError struct {
	DocumentID string
	ChunkID    string
	Reason     string
}

// Error implements the error interface.
func (e *ChunkStateError) Error() string {
	if e.ChunkID != "" {
		return fmt.Sprintf("invalid chunk state: document %s chunk %s: %s", e.DocumentID, e.ChunkID, e.Reason)
	}
	return fmt.Sprintf("invalid chunk state: document %s: %s", e.DocumentID, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidChunkState.
func (e *ChunkStateError) Unwrap() error {
	return ErrInvalidChunkState
}
