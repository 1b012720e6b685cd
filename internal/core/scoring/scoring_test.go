package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite clamps to zero", []float32{1, 0}, []float32{-1, 0}, 0},
		{"empty", nil, []float32{1}, 0},
		{"mismatched dims", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard(t *testing.T) {
	a := TermSet([]string{"revenue", "growth", "q3"})
	b := TermSet([]string{"revenue", "q3", "costs"})

	// intersection 2, union 4
	assert.InDelta(t, 0.5, Jaccard(a, b), 1e-9)
	assert.Zero(t, Jaccard(nil, b))
	assert.InDelta(t, 1.0, Jaccard(a, a), 1e-9)
}

func TestOverlap(t *testing.T) {
	query := TermSet([]string{"revenue", "growth"})
	chunk := TermSet([]string{"revenue", "growth", "was", "strong", "this", "quarter"})

	assert.InDelta(t, 1.0, Overlap(query, chunk), 1e-9)
	assert.InDelta(t, 0.5, Overlap(query, TermSet([]string{"revenue"})), 1e-9)
	assert.Zero(t, Overlap(nil, chunk))
}

func TestCentroid(t *testing.T) {
	got := Centroid([][]float32{{1, 0}, {0, 1}})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.5, float64(got[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(got[1]), 1e-6)

	assert.Nil(t, Centroid(nil))
	assert.Nil(t, Centroid([][]float32{{1, 2}, {1}}))
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Revenue grew 12% in Q3, beating forecasts.")
	assert.Equal(t, []string{"revenue", "grew", "12", "in", "q3", "beating", "forecasts"}, tokens)
}

func TestContentTokens_DropsStopWords(t *testing.T) {
	tokens := ContentTokens("the revenue of the quarter")
	assert.Equal(t, []string{"revenue", "quarter"}, tokens)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "acme corp q3", Normalize("  Acme   Corp\nQ3 "))
}

func TestSplitSentences(t *testing.T) {
	text := "First sentence. Second one!\n# Heading\nThird?"
	got := SplitSentences(text)
	assert.Equal(t, []string{"First sentence.", "Second one!", "# Heading", "Third?"}, got)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"revenue", "revenu", 1},
		{"", "abc", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestConfig_Confidence(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, domain.ConfidenceHigh, cfg.Confidence(0.8))
	assert.Equal(t, domain.ConfidenceHigh, cfg.Confidence(0.75))
	assert.Equal(t, domain.ConfidenceMedium, cfg.Confidence(0.5))
	assert.Equal(t, domain.ConfidenceLow, cfg.Confidence(0.39))
}

func TestConfig_WeightsFor(t *testing.T) {
	cfg := DefaultConfig()

	hybrid := cfg.WeightsFor(domain.SearchModeHybrid)
	assert.Greater(t, hybrid.Exact, hybrid.Semantic)
	assert.Greater(t, hybrid.Exact, hybrid.Lexical)

	semantic := cfg.WeightsFor(domain.SearchModeSemantic)
	assert.Greater(t, semantic.Semantic, 0.8)

	// Unknown modes fall back to hybrid.
	assert.Equal(t, hybrid, cfg.WeightsFor(domain.SearchMode("bogus")))

	// Every blend sums to 1 so combined scores stay in range.
	for mode, w := range cfg.ModeWeights {
		assert.InDelta(t, 1.0, w.Semantic+w.Lexical+w.Exact, 1e-9, "mode %s", mode)
	}
}

func TestConfig_EstimateTokens(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0, cfg.EstimateTokens(""))
	assert.Equal(t, 1, cfg.EstimateTokens("abc"))
	assert.Equal(t, 25, cfg.EstimateTokens(string(make([]byte, 100))))
}
