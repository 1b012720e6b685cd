package services

import (
	"context"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/quarrylabs/quarry/internal/core/domain"
	"github.com/quarrylabs/quarry/internal/core/ports/driven"
	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/core/scoring"
	"github.com/quarrylabs/quarry/internal/logger"
)

// Ensure Segmenter implements the interface.
var _ driving.SegmenterService = (*Segmenter)(nil)

// Segmenter splits document content into chunks.
//
// Hybrid mode needs no external capability: it windows the content by
// an estimated token budget with overlap. Semantic mode groups
// sentences by embedding similarity and enriches chunk metadata; when
// the embedding gateway fails it falls back to hybrid mode for that
// document instead of failing the document.
type Segmenter struct {
	embedder driven.EmbeddingService
	cfg      scoring.Config
}

// NewSegmenter creates a new segmenter. The embedder is optional; when
// nil, semantic mode always falls back to hybrid mode.
func NewSegmenter(embedder driven.EmbeddingService, cfg scoring.Config) *Segmenter {
	return &Segmenter{
		embedder: embedder,
		cfg:      cfg,
	}
}

// Segment splits the document into ordered chunks.
func (s *Segmenter) Segment(
	ctx context.Context, doc *domain.Document, mode domain.SegmentMode, opts domain.SegmentOptions,
) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(doc.Content) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	opts = s.resolveOptions(opts)

	if mode == domain.SegmentSemantic {
		chunks, err := s.segmentSemantic(ctx, doc, opts)
		if err == nil {
			return chunks, nil
		}
		// Gateway failure degrades to hybrid chunking for this
		// document; it never becomes a document-processing failure.
		logger.Warn("Semantic chunking failed for %s: %v (falling back to hybrid)", doc.ID, err)
	}

	return s.segmentHybrid(doc, opts), nil
}

// resolveOptions fills zero values from the scoring configuration.
func (s *Segmenter) resolveOptions(opts domain.SegmentOptions) domain.SegmentOptions {
	if opts.TokenBudget <= 0 {
		opts.TokenBudget = s.cfg.TokenBudget
	}
	if opts.TokenOverlap < 0 || opts.TokenOverlap >= opts.TokenBudget {
		opts.TokenOverlap = opts.TokenBudget / 10
	} else if opts.TokenOverlap == 0 {
		opts.TokenOverlap = s.cfg.TokenOverlap
	}
	if opts.SimilarityThreshold <= 0 || opts.SimilarityThreshold > 1 {
		opts.SimilarityThreshold = s.cfg.SimilarityThreshold
	}
	if opts.TargetTokens <= 0 {
		opts.TargetTokens = s.cfg.TargetTokens
	}
	if opts.MinTokens <= 0 || opts.MinTokens > opts.TargetTokens {
		opts.MinTokens = s.cfg.MinTokens
	}
	return opts
}

// segmentHybrid windows the content by estimated tokens with overlap.
// Chunks carry positional metadata only; the enrichment fields stay
// zero so consumers can tell which pipeline produced a chunk.
func (s *Segmenter) segmentHybrid(doc *domain.Document, opts domain.SegmentOptions) []domain.Chunk {
	cpt := s.cfg.CharsPerToken
	if cpt <= 0 {
		cpt = 4
	}
	window := opts.TokenBudget * cpt
	overlap := opts.TokenOverlap * cpt

	content := doc.Content
	contentLen := len(content)

	estimated := (contentLen / (window - overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	position := 0
	start := 0

	for start < contentLen {
		end := start + window
		if end > contentLen {
			end = contentLen
		} else {
			end = snapToRuneStart(content, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:             uuid.New().String(),
			DocumentID:     doc.ID,
			Content:        content[start:end],
			Position:       position,
			StartOffset:    start,
			EndOffset:      end,
			EmbeddingState: domain.EmbeddingPending,
		})
		position++

		if end == contentLen {
			break
		}

		next := snapToRuneStart(content, end-overlap)
		if next <= start {
			// Rune snapping can stall progress on pathological input.
			next = end
		}
		start = next
	}

	return chunks
}

// snapToRuneStart moves the byte offset back to the nearest rune start
// so windows never split a multi-byte rune.
func snapToRuneStart(s string, offset int) int {
	for offset > 0 && offset < len(s) && !utf8.RuneStart(s[offset]) {
		offset--
	}
	return offset
}

// sentence is a unit of semantic grouping with its source offsets.
type sentence struct {
	text      string
	start     int
	end       int
	hardBreak bool // heading or paragraph boundary before this sentence
	embedding []float32
}

// segmentSemantic groups consecutive sentences while their similarity
// to the running centroid stays above the threshold and the chunk has
// not outgrown its token target. Headings and paragraph breaks always
// start a new chunk.
func (s *Segmenter) segmentSemantic(
	ctx context.Context, doc *domain.Document, opts domain.SegmentOptions,
) ([]domain.Chunk, error) {
	if s.embedder == nil {
		return nil, domain.ErrGatewayUnavailable
	}

	sentences := splitSemanticUnits(doc.Content)
	if len(sentences) == 0 {
		return nil, nil
	}

	texts := make([]string, len(sentences))
	for i := range sentences {
		texts[i] = sentences[i].text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(sentences) {
		return nil, domain.ErrGatewayUnavailable
	}
	for i := range sentences {
		sentences[i].embedding = embeddings[i]
	}

	groups := s.groupSentences(sentences, opts)

	chunks := make([]domain.Chunk, 0, len(groups))
	for position, group := range groups {
		chunks = append(chunks, s.buildSemanticChunk(doc, group, position))
	}
	return chunks, nil
}

// groupSentences performs the greedy centroid grouping.
func (s *Segmenter) groupSentences(sentences []sentence, opts domain.SegmentOptions) [][]sentence {
	var groups [][]sentence
	var current []sentence
	var vectors [][]float32
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			groups = append(groups, current)
			current = nil
			vectors = nil
			currentTokens = 0
		}
	}

	for _, sent := range sentences {
		tokens := s.cfg.EstimateTokens(sent.text)

		if len(current) > 0 {
			overBudget := currentTokens+tokens > opts.TargetTokens
			centroid := scoring.Centroid(vectors)
			drifted := scoring.Cosine(sent.embedding, centroid) < opts.SimilarityThreshold

			// A similarity break is honoured only once the chunk has
			// reached its minimum size; the budget and hard breaks
			// always win.
			if sent.hardBreak || overBudget || (drifted && currentTokens >= opts.MinTokens) {
				flush()
			}
		}

		current = append(current, sent)
		vectors = append(vectors, sent.embedding)
		currentTokens += tokens
	}
	flush()

	return groups
}

// buildSemanticChunk assembles a chunk and its enriched metadata from a
// sentence group.
func (s *Segmenter) buildSemanticChunk(doc *domain.Document, group []sentence, position int) domain.Chunk {
	start := group[0].start
	end := group[len(group)-1].end
	content := doc.Content[start:end]

	vectors := make([][]float32, len(group))
	for i := range group {
		vectors[i] = group[i].embedding
	}

	return domain.Chunk{
		ID:             uuid.New().String(),
		DocumentID:     doc.ID,
		Content:        content,
		Position:       position,
		StartOffset:    start,
		EndOffset:      end,
		EmbeddingState: domain.EmbeddingPending,
		Metadata:       enrichMetadata(doc, content, vectors),
	}
}

// enrichMetadata derives the semantic-pipeline metadata for a chunk.
func enrichMetadata(doc *domain.Document, content string, vectors [][]float32) domain.ChunkMetadata {
	tokens := scoring.ContentTokens(content)

	freq := make(map[string]int)
	for _, tok := range tokens {
		if len(tok) > 3 {
			freq[tok]++
		}
	}

	keyPhrases := topTerms(freq, 5, 1)
	topics := topTerms(freq, 3, 2)
	entities := extractEntities(content)

	// Importance: how much the chunk shares with the document's own
	// descriptors (title and keywords).
	docTerms := scoring.TermSet(scoring.ContentTokens(doc.Title + " " + strings.Join(doc.Metadata.Keywords, " ")))
	importance := scoring.Overlap(docTerms, scoring.TermSet(tokens))

	// Semantic density: vocabulary richness of the chunk.
	density := 0.0
	if len(tokens) > 0 {
		density = float64(len(scoring.TermSet(tokens))) / float64(len(tokens))
	}

	// Coherence: mean similarity of each sentence to the centroid.
	coherence := 0.0
	if centroid := scoring.Centroid(vectors); centroid != nil {
		for _, v := range vectors {
			coherence += scoring.Cosine(v, centroid)
		}
		coherence /= float64(len(vectors))
	}

	return domain.ChunkMetadata{
		KeyPhrases:      keyPhrases,
		Topics:          topics,
		Entities:        entities,
		Importance:      importance,
		SemanticDensity: density,
		Coherence:       coherence,
		Enriched:        true,
	}
}

// topTerms returns up to n terms with frequency >= minFreq, most
// frequent first, ties alphabetical for determinism.
func topTerms(freq map[string]int, n, minFreq int) []string {
	terms := make([]string, 0, len(freq))
	for term, count := range freq {
		if count >= minFreq {
			terms = append(terms, term)
		}
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] == freq[terms[j]] {
			return terms[i] < terms[j]
		}
		return freq[terms[i]] > freq[terms[j]]
	})
	if len(terms) > n {
		terms = terms[:n]
	}
	return terms
}

// extractEntities finds capitalised words that do not open a sentence.
// A heuristic, not NER: good enough to feed related-suggestion lookups.
func extractEntities(content string) []string {
	seen := make(map[string]struct{})
	var entities []string

	for _, sent := range scoring.SplitSentences(content) {
		words := strings.Fields(sent)
		for i := 1; i < len(words); i++ {
			word := strings.TrimFunc(words[i], func(r rune) bool {
				return !unicode.IsLetter(r) && !unicode.IsNumber(r)
			})
			if len(word) < 2 {
				continue
			}
			r, _ := utf8.DecodeRuneInString(word)
			if !unicode.IsUpper(r) {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}
			entities = append(entities, word)
		}
	}

	sort.Strings(entities)
	if len(entities) > 8 {
		entities = entities[:8]
	}
	return entities
}

// splitSemanticUnits splits content into sentences with offsets,
// marking headings and paragraph boundaries as hard split points.
func splitSemanticUnits(content string) []sentence {
	var units []sentence

	offset := 0
	pendingBreak := false

	for _, line := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			// Blank line: the next sentence starts a new chunk.
			pendingBreak = true
		case strings.HasPrefix(trimmed, "#"):
			// Headings are their own unit and force a break on both sides.
			start, end := trimOffsets(line, offset)
			units = append(units, sentence{text: trimmed, start: start, end: end, hardBreak: true})
			pendingBreak = true
		default:
			for _, seg := range splitLineSentences(line, offset) {
				seg.hardBreak = pendingBreak
				pendingBreak = false
				units = append(units, seg)
			}
		}

		offset += len(line)
	}

	return units
}

// splitLineSentences splits one line into terminator-delimited
// sentences, tracking byte offsets relative to the whole document.
func splitLineSentences(line string, base int) []sentence {
	var out []sentence
	segStart := 0

	flush := func(end int) {
		raw := line[segStart:end]
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			lead := strings.Index(raw, trimmed)
			out = append(out, sentence{
				text:  trimmed,
				start: base + segStart + lead,
				end:   base + segStart + lead + len(trimmed),
			})
		}
		segStart = end
	}

	for i, r := range line {
		if r == '.' || r == '!' || r == '?' {
			flush(i + utf8.RuneLen(r))
		}
	}
	flush(len(line))

	return out
}

// trimOffsets returns the document offsets of the trimmed line content.
func trimOffsets(line string, base int) (int, int) {
	trimmed := strings.TrimSpace(line)
	lead := strings.Index(line, trimmed)
	return base + lead, base + lead + len(trimmed)
}
