// Package scoring provides the shared text-scoring utilities used by the
// segmenter, the ranking engine, and the suggestion engine: tokenisation,
// similarity measures, edit distance, and the single configuration object
// holding every weight and threshold.
//
// Keeping the numeric constants in one Config avoids the drift that comes
// from each call site defining its own thresholds.
package scoring
