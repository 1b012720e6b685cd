package driven

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// QueryHistoryStore records completed searches and suggestion
// selections. Entries are never deduplicated at write time; readers
// deduplicate and aggregate popularity themselves.
type QueryHistoryStore interface {
	// Append records a completed query.
	Append(ctx context.Context, entry domain.QueryHistoryEntry) error

	// Recent returns the most recent entries, newest first, up to limit.
	Recent(ctx context.Context, limit int) ([]domain.QueryHistoryEntry, error)
}
