package domain

import "time"

// SuggestionType classifies how a suggestion was derived.
type SuggestionType string

const (
	// SuggestionCompletion extends the partial query from known vocabulary.
	SuggestionCompletion SuggestionType = "completion"

	// SuggestionCorrection fixes a probable typo via edit distance.
	SuggestionCorrection SuggestionType = "correction"

	// SuggestionTopic surfaces a topic co-occurring with the query terms.
	SuggestionTopic SuggestionType = "topic"

	// SuggestionRelated surfaces an entity related to the query terms.
	SuggestionRelated SuggestionType = "related"
)

// Suggestion is an ephemeral query suggestion, regenerated per
// (debounced) keystroke and never persisted.
type Suggestion struct {
	// Text is the suggested query text.
	Text string

	// Type records how the suggestion was derived.
	Type SuggestionType

	// Score is the blended ranking score (0-1).
	Score float64

	// Context optionally names the source of the suggestion
	// (e.g. the document title a topic came from).
	Context string

	// Popularity counts how often the text appears in query history.
	Popularity int
}

// SuggestOptions configures suggestion generation.
type SuggestOptions struct {
	// MinLength is the minimum partial-query length before
	// suggestions are generated. Defaults to 2.
	MinLength int

	// MaxSuggestions caps the returned list. Defaults to 8.
	MaxSuggestions int

	// MaxEditDistance bounds correction candidates. Defaults to 2.
	MaxEditDistance int
}

// QueryHistoryEntry records a completed search. Entries are appended on
// every completed search and on suggestion selection; deduplication
// happens at read time, never at write time.
type QueryHistoryEntry struct {
	// Query is the executed query text.
	Query string

	// Timestamp is when the search completed.
	Timestamp time.Time
}
