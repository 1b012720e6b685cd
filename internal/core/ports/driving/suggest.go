package driving

import (
	"context"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

// SuggestionService produces ranked query suggestions for a partial
// query. Callers debounce keystrokes and cancel superseded requests;
// the service itself is synchronous.
type SuggestionService interface {
	// Suggest returns deduplicated, ranked suggestions for the
	// partial query. Partials below the minimum length return an
	// empty slice. Source failures degrade to an empty slice.
	Suggest(ctx context.Context, partial string, opts domain.SuggestOptions) ([]domain.Suggestion, error)

	// RecordSelection feeds a chosen suggestion back into query
	// history so future completions rank it higher. This is a
	// required side effect of selection, not optional telemetry.
	RecordSelection(ctx context.Context, text string) error
}
