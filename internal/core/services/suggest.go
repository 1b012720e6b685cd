package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/core/scoring"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// Type base weights for the blended suggestion score. Completions are
// what the user most likely wants; corrections catch typos; topics and
// related entities broaden the query.
var suggestionBaseWeights = map[domain.SuggestionType]float64{
	domain.SuggestionCompletion: 1.0,
	domain.SuggestionCorrection: 0.8,
	domain.SuggestionTopic:      0.6,
	domain.SuggestionRelated:    0.5,
}

// SuggestionService produces ranked query suggestions from the corpus
// vocabulary (titles, keywords, key phrases), query history, and chunk
// topic/entity metadata. It shares the chunk index with the ranking
// engine but is otherwise independent of it.
type SuggestionService struct {
	index   driven.ChunkIndex
	history driven.QueryHistoryStore
	cfg     scoring.Config
}

// NewSuggestionService creates a new suggestion service.
func NewSuggestionService(
	index driven.ChunkIndex,
	history driven.QueryHistoryStore,
	cfg scoring.Config,
) *SuggestionService {
	return &SuggestionService{
		index:   index,
		history: history,
		cfg:     cfg,
	}
}

// vocabEntry is one known term with its provenance and usage stats.
type vocabEntry struct {
	text       string
	context    string
	popularity int
	lastSeen   time.Time
}

// candidate is a suggestion before dedup and ranking.
type candidate struct {
	text       string
	kind       domain.SuggestionType
	quality    float64
	context    string
	popularity int
}

// Suggest returns deduplicated, ranked suggestions for the partial query.
func (s *SuggestionService) Suggest(
	ctx context.Context, partial string, opts domain.SuggestOptions,
) ([]domain.Suggestion, error) {
	opts = s.resolveOptions(opts)

	partial = strings.TrimSpace(partial)
	if utf8.RuneCountInString(partial) < opts.MinLength {
		return []domain.Suggestion{}, nil
	}
	lowered := strings.ToLower(partial)

	logger.Section("Suggestion Generation")
	logger.Debug("Partial: %q", partial)

	vocab, err := s.buildVocabulary(ctx)
	if err != nil {
		// A corrupt vocabulary/history source never blocks the input
		// field; it degrades to no suggestions.
		logger.Warn("Suggestion sources unavailable: %v", err)
		return []domain.Suggestion{}, nil
	}

	var candidates []candidate
	completions := s.completionCandidates(lowered, vocab)
	candidates = append(candidates, completions...)

	// Corrections only matter when the partial does not already sit
	// close to known vocabulary.
	if len(completions) == 0 {
		candidates = append(candidates, s.correctionCandidates(lowered, vocab, opts.MaxEditDistance)...)
	}

	topicCands, err := s.topicCandidates(ctx, lowered)
	if err != nil {
		logger.Warn("Topic suggestions unavailable: %v", err)
	} else {
		candidates = append(candidates, topicCands...)
	}

	suggestions := s.blend(candidates, opts.MaxSuggestions)
	logger.Debug("Suggestions: %d (from %d candidates)", len(suggestions), len(candidates))
	return suggestions, nil
}

// RecordSelection feeds a chosen suggestion back into query history.
func (s *SuggestionService) RecordSelection(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrInvalidInput
	}
	if s.history == nil {
		return nil
	}

	entry := domain.QueryHistoryEntry{Query: text, Timestamp: time.Now().UTC()}
	if err := s.history.Append(ctx, entry); err != nil {
		return fmt.Errorf("recording selection: %w", err)
	}
	return nil
}

// resolveOptions fills zero values with defaults.
func (s *SuggestionService) resolveOptions(opts domain.SuggestOptions) domain.SuggestOptions {
	if opts.MinLength <= 0 {
		opts.MinLength = 2
	}
	if opts.MaxSuggestions <= 0 {
		opts.MaxSuggestions = 8
	}
	if opts.MaxEditDistance <= 0 {
		opts.MaxEditDistance = 2
	}
	return opts
}

// buildVocabulary assembles the known-term table from document titles,
// document keywords, chunk key phrases, and query history.
func (s *SuggestionService) buildVocabulary(ctx context.Context) (map[string]*vocabEntry, error) {
	vocab := make(map[string]*vocabEntry)

	add := func(text, context string) *vocabEntry {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
		key := strings.ToLower(text)
		entry, ok := vocab[key]
		if !ok {
			entry = &vocabEntry{text: text, context: context}
			vocab[key] = entry
		}
		return entry
	}

	docs, err := s.index.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus vocabulary: %w", err)
	}

	for i := range docs {
		doc := docs[i]
		add(doc.Title, doc.Title)
		for _, kw := range doc.Metadata.Keywords {
			add(kw, doc.Title)
		}

		chunks, err := s.index.Chunks(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loading chunk vocabulary: %w", err)
		}
		for j := range chunks {
			for _, phrase := range chunks[j].Metadata.KeyPhrases {
				add(phrase, doc.Title)
			}
		}
	}

	if s.history != nil {
		entries, err := s.history.Recent(ctx, 200)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrHistoryUnavailable, err)
		}
		// History is append-only and never deduplicated at write
		// time; popularity is the read-time aggregate.
		for _, entry := range entries {
			if e := add(entry.Query, ""); e != nil {
				e.popularity++
				if entry.Timestamp.After(e.lastSeen) {
					e.lastSeen = entry.Timestamp
				}
			}
		}
	}

	return vocab, nil
}

// completionCandidates matches the partial against vocabulary by
// prefix (strong) or substring (weaker), weighting by usage.
func (s *SuggestionService) completionCandidates(lowered string, vocab map[string]*vocabEntry) []candidate {
	var out []candidate
	now := time.Now().UTC()

	for key, entry := range vocab {
		if key == lowered {
			continue
		}

		quality := 0.0
		switch {
		case strings.HasPrefix(key, lowered):
			quality = 1.0
		case strings.Contains(key, lowered):
			quality = 0.7
		default:
			continue
		}

		// Queries used in the last day rank slightly above stale ones.
		if entry.popularity > 0 && now.Sub(entry.lastSeen) < 24*time.Hour {
			quality = minFloat(1.0, quality+0.1)
		}

		out = append(out, candidate{
			text:       entry.text,
			kind:       domain.SuggestionCompletion,
			quality:    quality,
			context:    entry.context,
			popularity: entry.popularity,
		})
	}

	return out
}

// correctionCandidates finds vocabulary within a bounded edit distance
// of the partial, to catch typos.
func (s *SuggestionService) correctionCandidates(
	lowered string, vocab map[string]*vocabEntry, maxDistance int,
) []candidate {
	// Short partials tolerate fewer edits.
	if utf8.RuneCountInString(lowered) < 5 && maxDistance > 1 {
		maxDistance = 1
	}

	var out []candidate
	for key, entry := range vocab {
		if key == lowered {
			continue
		}
		dist := scoring.Levenshtein(lowered, key)
		if dist == 0 || dist > maxDistance {
			continue
		}
		out = append(out, candidate{
			text:       entry.text,
			kind:       domain.SuggestionCorrection,
			quality:    1.0 - float64(dist)/float64(maxDistance+1),
			context:    entry.context,
			popularity: entry.popularity,
		})
	}
	return out
}

// topicCandidates surfaces chunk topics and entities that co-occur
// with the partial query's terms.
func (s *SuggestionService) topicCandidates(ctx context.Context, lowered string) ([]candidate, error) {
	partialTerms := scoring.TermSet(scoring.ContentTokens(lowered))
	if len(partialTerms) == 0 {
		return nil, nil
	}

	docs, err := s.index.Documents(ctx)
	if err != nil {
		return nil, err
	}

	var out []candidate
	for i := range docs {
		doc := docs[i]
		chunks, err := s.index.Chunks(ctx, doc.ID)
		if err != nil {
			return nil, err
		}

		for j := range chunks {
			chunk := chunks[j]
			if !chunk.Metadata.Enriched {
				continue
			}

			chunkTerms := scoring.TermSet(scoring.ContentTokens(chunk.Content))
			cooccurrence := scoring.Overlap(partialTerms, chunkTerms)
			if cooccurrence == 0 {
				continue
			}

			for _, topic := range chunk.Metadata.Topics {
				if strings.EqualFold(topic, lowered) {
					continue
				}
				out = append(out, candidate{
					text:    topic,
					kind:    domain.SuggestionTopic,
					quality: cooccurrence,
					context: doc.Title,
				})
			}
			for _, entity := range chunk.Metadata.Entities {
				if strings.EqualFold(entity, lowered) {
					continue
				}
				out = append(out, candidate{
					text:    entity,
					kind:    domain.SuggestionRelated,
					quality: cooccurrence,
					context: doc.Title,
				})
			}
		}
	}

	return out, nil
}

// blend deduplicates candidates by text, scores them, and returns the
// ranked, capped suggestion list.
func (s *SuggestionService) blend(candidates []candidate, limit int) []domain.Suggestion {
	best := make(map[string]domain.Suggestion)

	for _, c := range candidates {
		// popularity saturates: 0 -> 0, 1 -> 0.25, 3 -> 0.5, 9 -> 0.75
		popScore := float64(c.popularity) / (float64(c.popularity) + 3.0)
		score := suggestionBaseWeights[c.kind] * (0.8*c.quality + 0.2*popScore)

		key := strings.ToLower(c.text)
		if existing, ok := best[key]; ok && existing.Score >= score {
			continue
		}
		best[key] = domain.Suggestion{
			Text:       c.text,
			Type:       c.kind,
			Score:      score,
			Context:    c.context,
			Popularity: c.popularity,
		}
	}

	out := make([]domain.Suggestion, 0, len(best))
	for _, sug := range best {
		out = append(out, sug)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.ToLower(out[i].Text) < strings.ToLower(out[j].Text)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
