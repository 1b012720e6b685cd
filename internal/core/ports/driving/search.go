package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// SearchService provides hybrid ranked search to external actors.
type SearchService interface {
	// Search ranks ready chunks against the query and returns them
	// ordered by combined score. Empty queries and empty corpora
	// return an empty slice, never an error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.ScoredResult, error)
}
