package scoring

import "math"

// Cosine computes the cosine similarity between two vectors, clamped to
// [0, 1]. Mismatched or empty vectors score 0 rather than erroring so a
// chunk lacking an embedding simply contributes no semantic signal.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// Jaccard computes the Jaccard ratio between two term sets.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for term := range a {
		if _, ok := b[term]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Overlap computes the fraction of query terms present in the chunk
// term set. It is more forgiving than Jaccard for short queries against
// long chunks.
func Overlap(query, chunk map[string]struct{}) float64 {
	if len(query) == 0 || len(chunk) == 0 {
		return 0
	}

	matched := 0
	for term := range query {
		if _, ok := chunk[term]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(query))
}

// Centroid computes the mean vector of a set of equal-length vectors.
// Returns nil when the input is empty or inconsistent.
func Centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	for _, v := range vectors {
		if len(v) != dim {
			return nil
		}
		for i := range v {
			sum[i] += float64(v[i])
		}
	}

	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(len(vectors)))
	}
	return out
}
