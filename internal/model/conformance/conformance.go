// Package conformance is a backend-agnostic test suite exercising
// properties P4-P9 from the specification against any model.Model
// implementation. Both internal/model/memory and
// internal/model/sqlitestore run it against their own backend so the
// two stay provably interchangeable instead of only coincidentally
// agreeing on the handful of cases each package's own tests happen to
// cover.
package conformance

import (
	"math"
	"testing"

	"github.com/anomitroid/local-search-engine/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory constructs a fresh, empty backend for a single test case.
// Implementations typically wrap *testing.T-scoped temp directories.
type Factory func(t *testing.T) model.Model

// Run executes every property test in this package against the
// backend new produces.
func Run(t *testing.T, new Factory) {
	t.Run("P4_DocumentFrequency", func(t *testing.T) { testDocumentFrequency(t, new) })
	t.Run("P5_AverageFieldLength", func(t *testing.T) { testAverageFieldLength(t, new) })
	t.Run("P6_ReaddIdempotence", func(t *testing.T) { testReaddIdempotence(t, new) })
	t.Run("P7_RemoveThenAddEquivalence", func(t *testing.T) { testRemoveThenAddEquivalence(t, new) })
	t.Run("P8_ScoreMonotonicity", func(t *testing.T) { testScoreMonotonicity(t, new) })
	t.Run("P9_ReindexGating", func(t *testing.T) { testReindexGating(t, new) })
}

// P4: after any sequence of add/remove operations, DocumentFrequency
// for a term equals the number of documents that carry it in any
// field. Observed indirectly through Stats().Terms (the number of
// DocFreq entries, checked here before any removal, while every entry
// is nonzero) since the interface doesn't expose the per-term count
// directly.
func testDocumentFrequency(t *testing.T, new Factory) {
	m := new(t)
	require.NoError(t, m.Add("a.txt", 1, map[string]string{"content": "alpha beta"}))
	require.NoError(t, m.Add("b.txt", 1, map[string]string{"content": "beta gamma"}))

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Docs)
	assert.Equal(t, 3, stats.Terms) // ALPHA, BETA, GAMMA

	require.NoError(t, m.Remove("a.txt"))
	stats, err = m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Docs)

	// ALPHA no longer appears anywhere; a search for it should produce
	// no positive-scoring result.
	results, err := m.Search("alpha")
	require.NoError(t, err)
	for _, r := range results {
		assert.LessOrEqual(t, r.Score, 0.0, "alpha should not score positively once unindexed")
	}
}

// P5: AverageFieldLength changes correctly as documents carrying a
// field are added. Observed through the short document's score, which
// must equal the BM25F value computed with the mean content length of
// both documents once the long one has been added.
func testAverageFieldLength(t *testing.T, new Factory) {
	m := new(t)
	require.NoError(t, m.Add("short.txt", 1, map[string]string{"content": "fox"}))
	results, err := m.Search("fox")
	require.NoError(t, err)
	require.Len(t, results, 1)
	firstScore := results[0].Score

	require.NoError(t, m.Add("long.txt", 1, map[string]string{"content": "fox and many many many many other words here"}))
	results, err = m.Search("fox")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		if r.Path == "short.txt" {
			// Both documents contain FOX, so N=2, df=2 and
			// IDF = ln(0.2). The mean content length is (1+9)/2 = 5, so
			// F = 1/(1+0.75*(1/5-1)) = 2.5 and the score is
			// ln(0.2)*2.5*(1.5+1)/(2.5+1.5), which is negative.
			assert.InDelta(t, math.Log(0.2)*2.5*2.5/4.0, r.Score, 1e-9)
			_ = firstScore
		}
	}
}

// P6: re-adding the same document with the same fields leaves the
// Model in the same observable state as a single add.
func testReaddIdempotence(t *testing.T, new Factory) {
	m := new(t)
	fields := map[string]string{"name": "a", "content": "alpha beta"}
	require.NoError(t, m.Add("a.txt", 1, fields))
	statsOnce, err := m.Stats()
	require.NoError(t, err)
	resultsOnce, err := m.Search("alpha")
	require.NoError(t, err)

	require.NoError(t, m.Add("a.txt", 1, fields))
	statsTwice, err := m.Stats()
	require.NoError(t, err)
	resultsTwice, err := m.Search("alpha")
	require.NoError(t, err)

	assert.Equal(t, statsOnce, statsTwice)
	require.Equal(t, len(resultsOnce), len(resultsTwice))
	for i := range resultsOnce {
		assert.Equal(t, resultsOnce[i].Path, resultsTwice[i].Path)
		assert.InDelta(t, resultsOnce[i].Score, resultsTwice[i].Score, 1e-9)
	}
}

// P7: remove(p); add(p, t, F) leaves the same state as a single add
// that replaces an existing entry.
func testRemoveThenAddEquivalence(t *testing.T, new Factory) {
	fields := map[string]string{"content": "gamma delta"}

	replaced := new(t)
	require.NoError(t, replaced.Add("a.txt", 1, map[string]string{"content": "alpha beta"}))
	require.NoError(t, replaced.Add("a.txt", 2, fields))

	removedThenAdded := new(t)
	require.NoError(t, removedThenAdded.Add("a.txt", 1, map[string]string{"content": "alpha beta"}))
	require.NoError(t, removedThenAdded.Remove("a.txt"))
	require.NoError(t, removedThenAdded.Add("a.txt", 2, fields))

	statsA, err := replaced.Stats()
	require.NoError(t, err)
	statsB, err := removedThenAdded.Stats()
	require.NoError(t, err)
	assert.Equal(t, statsA, statsB)

	resultsA, err := replaced.Search("gamma")
	require.NoError(t, err)
	resultsB, err := removedThenAdded.Search("gamma")
	require.NoError(t, err)
	require.Equal(t, len(resultsA), len(resultsB))
	for i := range resultsA {
		assert.InDelta(t, resultsA[i].Score, resultsB[i].Score, 1e-9)
	}
}

// P8: adding another occurrence of a query token to a document's field
// cannot decrease that document's score, other documents held fixed.
func testScoreMonotonicity(t *testing.T, new Factory) {
	m := new(t)
	require.NoError(t, m.Add("other.txt", 1, map[string]string{"content": "unrelated words entirely"}))
	require.NoError(t, m.Add("a.txt", 1, map[string]string{"content": "fox"}))
	before, err := m.Search("fox")
	require.NoError(t, err)
	beforeScore := scoreFor(before, "a.txt")

	require.NoError(t, m.Add("a.txt", 1, map[string]string{"content": "fox fox"}))
	after, err := m.Search("fox")
	require.NoError(t, err)
	afterScore := scoreFor(after, "a.txt")

	assert.GreaterOrEqual(t, afterScore, beforeScore)
}

// P9: requires_reindexing(p, t2) is true for t2 > t1 (the time of the
// last add) and false for t2 <= t1.
func testReindexGating(t *testing.T, new Factory) {
	m := new(t)
	require.NoError(t, m.Add("a.txt", 10, map[string]string{"content": "alpha"}))

	needs, err := m.RequiresReindexing("a.txt", 11)
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = m.RequiresReindexing("a.txt", 10)
	require.NoError(t, err)
	assert.False(t, needs)

	needs, err = m.RequiresReindexing("a.txt", 5)
	require.NoError(t, err)
	assert.False(t, needs)
}

func scoreFor(results []model.Result, path string) float64 {
	for _, r := range results {
		if r.Path == path {
			return r.Score
		}
	}
	return 0
}
