package memory

import (
	"context"
	"sync"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.QueryHistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory append-only query log.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.QueryHistoryEntry
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append records a completed query. Duplicates are kept; readers
// aggregate popularity.
func (s *HistoryStore) Append(_ context.Context, entry domain.QueryHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Recent returns the most recent entries, newest first, up to limit.
func (s *HistoryStore) Recent(_ context.Context, limit int) ([]domain.QueryHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.QueryHistoryEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
