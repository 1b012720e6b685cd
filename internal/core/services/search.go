package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/core/scoring"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Search cache sizing. Entries are keyed by (query, corpus
// fingerprint, options), so corpus mutation naturally misses.
const (
	searchCacheSize = 256
	searchCacheTTL  = 30 * time.Second
)

// SearchService is the hybrid ranking engine. It scores every ready
// chunk against the query on three signals (semantic similarity,
// lexical overlap, exact containment), blends them per mode, and
// returns an ordered, capped result list.
type SearchService struct {
	index    driven.ChunkIndex
	embedder driven.EmbeddingService
	history  driven.QueryHistoryStore
	cfg      scoring.Config
	cache    *expirable.LRU[string, []domain.ScoredResult]
}

// NewSearchService creates a new search service. The embedder and
// history parameters are optional (can be nil): without an embedder
// the semantic signal is zero, without history the engine skips query
// expansion and search logging.
func NewSearchService(
	index driven.ChunkIndex,
	embedder driven.EmbeddingService,
	history driven.QueryHistoryStore,
	cfg scoring.Config,
) *SearchService {
	return &SearchService{
		index:    index,
		embedder: embedder,
		history:  history,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, []domain.ScoredResult](searchCacheSize, nil, searchCacheTTL),
	}
}

// Search ranks ready chunks against the query.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.ScoredResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	// Empty or whitespace-only queries short-circuit without touching
	// the gateway.
	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.ScoredResult{}, nil
	}

	opts = s.resolveOptions(opts)
	logger.Debug("Mode: %s, Limit: %d, MinScore: %.2f", opts.Mode, opts.Limit, opts.MinScore)

	docs, err := s.index.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	if len(docs) == 0 {
		logger.Debug("Corpus empty, returning no results")
		return []domain.ScoredResult{}, nil
	}

	key := s.cacheKey(query, opts)
	if cached, ok := s.cache.Get(key); ok {
		logger.Debug("Cache hit for %q", query)
		s.recordQuery(ctx, query)
		return cloneResults(cached), nil
	}

	results, err := s.rank(ctx, query, docs, opts)
	if err != nil {
		return nil, err
	}

	s.cache.Add(key, cloneResults(results))
	s.recordQuery(ctx, query)

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// resolveOptions fills zero values from the scoring configuration.
func (s *SearchService) resolveOptions(opts domain.SearchOptions) domain.SearchOptions {
	if opts.Mode == "" {
		opts.Mode = domain.SearchModeHybrid
	}
	if opts.Limit <= 0 {
		opts.Limit = s.cfg.ResultLimit
	}
	if opts.MinScore <= 0 {
		opts.MinScore = s.cfg.MinScore
	}
	if opts.PerDocumentCap <= 0 {
		opts.PerDocumentCap = s.cfg.PerDocumentCap
	}
	return opts
}

// cacheKey builds the (query, corpus fingerprint, options) tuple key.
func (s *SearchService) cacheKey(query string, opts domain.SearchOptions) string {
	return fmt.Sprintf("%s|%s|%s|%d|%.3f|%d|%t",
		scoring.Normalize(query), s.index.Fingerprint(),
		opts.Mode, opts.Limit, opts.MinScore, opts.PerDocumentCap, opts.ExpandQuery)
}

// rank scores, filters, orders, and caps the corpus chunks.
func (s *SearchService) rank(
	ctx context.Context, query string, docs []domain.Document, opts domain.SearchOptions,
) ([]domain.ScoredResult, error) {
	weights := s.cfg.WeightsFor(opts.Mode)

	queryEmbedding := s.queryEmbedding(ctx, query, weights)
	queryTerms := scoring.ContentTokens(query)
	lexicalTerms := queryTerms
	if opts.ExpandQuery {
		lexicalTerms = s.expandQuery(ctx, queryTerms)
	}
	querySet := scoring.TermSet(lexicalTerms)
	normalizedQuery := scoring.Normalize(query)

	scored := make([]domain.ScoredResult, 0, 64)

	for i := range docs {
		doc := docs[i]
		chunks, err := s.index.Chunks(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}

		// A ready document with missing chunks or half-built chunk
		// state is an upstream processing bug, surfaced distinctly so
		// the caller can trigger reprocessing.
		if err := doc.ValidateReady(chunks); err != nil {
			return nil, err
		}

		for j := range chunks {
			result := s.scoreChunk(doc, chunks[j], queryEmbedding, querySet, normalizedQuery, weights)
			if result.CombinedScore >= opts.MinScore {
				scored = append(scored, result)
			}
		}
	}

	sortResults(scored)
	scored = applyDocumentCap(scored, opts.PerDocumentCap)

	if len(scored) > opts.Limit {
		scored = scored[:opts.Limit]
	}
	return scored, nil
}

// queryEmbedding fetches the query vector, degrading to nil (zero
// semantic signal) when the gateway is unavailable or unneeded.
func (s *SearchService) queryEmbedding(ctx context.Context, query string, weights scoring.Weights) []float32 {
	if weights.Semantic == 0 || s.embedder == nil {
		return nil
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v (semantic scores degrade to 0)", err)
		return nil
	}
	return embedding
}

// scoreChunk computes the three signals and their blend for one chunk.
func (s *SearchService) scoreChunk(
	doc domain.Document, chunk domain.Chunk,
	queryEmbedding []float32, querySet map[string]struct{}, normalizedQuery string,
	weights scoring.Weights,
) domain.ScoredResult {
	semantic := 0.0
	if chunk.HasEmbedding() {
		semantic = scoring.Cosine(queryEmbedding, chunk.Embedding)
	}

	chunkSet := scoring.TermSet(scoring.ContentTokens(chunk.Content))
	lexical := scoring.Overlap(querySet, chunkSet)

	exact := 0.0
	normalizedChunk := scoring.Normalize(chunk.Content)
	if normalizedQuery != "" && strings.Contains(normalizedChunk, normalizedQuery) {
		exact = 1.0
	}

	var matched []string
	for term := range querySet {
		if _, ok := chunkSet[term]; ok {
			matched = append(matched, term)
		}
	}
	sort.Strings(matched)

	combined := weights.Semantic*semantic + weights.Lexical*lexical + weights.Exact*exact

	return domain.ScoredResult{
		Document:      doc,
		Chunk:         chunk,
		SemanticScore: semantic,
		LexicalScore:  lexical,
		ExactScore:    exact,
		CombinedScore: combined,
		MatchedTerms:  matched,
		Confidence:    s.cfg.Confidence(combined),
	}
}

// expandQuery augments the query terms with terms from historical
// queries that share at least one term with this one.
func (s *SearchService) expandQuery(ctx context.Context, terms []string) []string {
	if s.history == nil || len(terms) == 0 {
		return terms
	}

	entries, err := s.history.Recent(ctx, 100)
	if err != nil {
		logger.Warn("Query expansion unavailable: %v", err)
		return terms
	}

	base := scoring.TermSet(terms)
	expanded := append([]string(nil), terms...)
	seen := scoring.TermSet(terms)

	for _, entry := range entries {
		historyTerms := scoring.ContentTokens(entry.Query)
		if scoring.Overlap(base, scoring.TermSet(historyTerms)) == 0 {
			continue
		}
		for _, term := range historyTerms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			expanded = append(expanded, term)
		}
	}

	if len(expanded) > len(terms) {
		logger.Debug("Query expanded from %d to %d terms", len(terms), len(expanded))
	}
	return expanded
}

// recordQuery appends the completed search to history, best effort.
func (s *SearchService) recordQuery(ctx context.Context, query string) {
	if s.history == nil {
		return
	}
	entry := domain.QueryHistoryEntry{Query: query, Timestamp: time.Now().UTC()}
	if err := s.history.Append(ctx, entry); err != nil {
		logger.Warn("Recording query history failed: %v", err)
	}
}

// sortResults orders by combined score descending, breaking ties by
// exact score, then chunk position (earlier wins), then document ID
// for full determinism.
func sortResults(results []domain.ScoredResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		if results[i].ExactScore != results[j].ExactScore {
			return results[i].ExactScore > results[j].ExactScore
		}
		if results[i].Chunk.Position != results[j].Chunk.Position {
			return results[i].Chunk.Position < results[j].Chunk.Position
		}
		return results[i].Document.ID < results[j].Document.ID
	})
}

// applyDocumentCap drops excess chunks from over-represented documents
// in score order (the input must already be sorted).
func applyDocumentCap(results []domain.ScoredResult, capPerDoc int) []domain.ScoredResult {
	if capPerDoc <= 0 {
		return results
	}

	perDoc := make(map[string]int)
	capped := results[:0]
	for _, r := range results {
		if perDoc[r.Document.ID] >= capPerDoc {
			continue
		}
		perDoc[r.Document.ID]++
		capped = append(capped, r)
	}
	return capped
}

// cloneResults copies the result slice so cache entries are never
// aliased by callers.
func cloneResults(results []domain.ScoredResult) []domain.ScoredResult {
	out := make([]domain.ScoredResult, len(results))
	copy(out, results)
	return out
}
