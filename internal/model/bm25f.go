package model

import "math"

// FieldData is one field's contribution to a single document: the
// per-term occurrence counts and the field's total token count.
type FieldData struct {
	TermFreq map[string]int
	Length   int
}

// DocFields is a document's fields keyed by field name, the shape both
// backends build (from an in-memory map or from a handful of SQL
// rows) before handing it to ScoreDocument.
type DocFields map[string]FieldData

// IDF computes the classic Okapi inverse document frequency for a term
// that appears in df of n documents. Unlike many BM25 implementations
// this never clamps a negative result to zero: a term present in more
// than half the corpus legitimately pulls matching documents down in
// the ranking, and the tests rely on that behavior.
func IDF(n, df int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
}

// ScoreDocument computes the BM25F score of a document against the
// tokenized query tokens (which may contain repeats; each occurrence
// contributes its own term). idf must map every term that appears in
// fields to its corpus-wide IDF value; avgLen must map every field
// name present in fields to the corpus-wide average length for that
// field. b is the length-normalization constant, shared by every
// field; k1 is the term-frequency saturation constant.
//
// A term with zero occurrences across every field in this document
// contributes nothing, matching the original project's behavior of
// giving unmatched documents a score of exactly zero rather than a
// negative one from an unconditional IDF addition.
func ScoreDocument(tokens []string, fields DocFields, idf map[string]float64, avgLen map[string]float64, weights FieldWeights, k1, b float64) float64 {
	var score float64
	for _, q := range tokens {
		var f float64
		for fieldName, fd := range fields {
			tf := fd.TermFreq[q]
			if tf == 0 {
				continue
			}
			w := weights.For(fieldName)
			l := float64(fd.Length)
			if avg, ok := avgLen[fieldName]; ok && avg > 0 {
				f += w * float64(tf) / (1 + b*(l/avg-1))
			} else {
				f += w * float64(tf)
			}
		}
		if f <= 0 {
			continue
		}
		idfq, ok := idf[q]
		if !ok {
			continue
		}
		score += idfq * f * (k1 + 1) / (f + k1)
	}
	if math.IsNaN(score) {
		return math.NaN()
	}
	return score
}
