package memory

import (
	"testing"

	"github.com/anomitroid/local-search-engine/internal/config"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(t.TempDir(), config.Config{
		Weights:          config.Default().Weights,
		B:                0.75,
		K1:               1.5,
		Stem:             false,
		SnapshotFileName: ".local_search_engine.json",
	}, logging.New("test"))
	require.NoError(t, err)
	return b
}

func TestS1TwoDocumentCorpus(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"name": "a", "extension": "txt", "content": "the quick brown fox"}))
	require.NoError(t, b.Add("b.txt", 1, map[string]string{"name": "b", "extension": "txt", "content": "the lazy dog"}))

	results, err := b.Search("fox")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a.txt", results[0].Path)
	// "fox" appears in exactly one of the two documents, so
	// IDF = ln((2-1+0.5)/(1+0.5)) = ln(1) = 0: a.txt's score is exactly
	// zero, not positive, under the mandated (unclamped) Robertson IDF.
	// a.txt still ranks first on the path tie-break at equal score.
	assert.Equal(t, 0.0, results[0].Score)
	for _, r := range results {
		if r.Path == "b.txt" {
			assert.LessOrEqual(t, r.Score, results[0].Score)
		}
	}

	results, err = b.Search("the")
	require.NoError(t, err)
	require.Len(t, results, 2)
	// ln((2-2+0.5)/(2+0.5)) = ln(0.2) is negative, so "the" should
	// produce negative (or at most small) scores for both documents,
	// and they must still be present and ordered deterministically.
	assert.InDelta(t, results[0].Score, results[1].Score, 1.0)
}

func TestS2UpdateSemantics(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))
	require.NoError(t, b.Add("a.txt", 2, map[string]string{"content": "beta"}))

	stats, err := b.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Docs)
	assert.Equal(t, 0, b.df["ALPHA"])
	assert.Equal(t, 1, b.df["BETA"])
}

func TestS3SkipUnchanged(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))
	require.NoError(t, b.Add("a.txt", 2, map[string]string{"content": "beta"}))

	needs, err := b.RequiresReindexing("a.txt", 2)
	require.NoError(t, err)
	assert.False(t, needs)

	needs, err = b.RequiresReindexing("a.txt", 3)
	require.NoError(t, err)
	assert.True(t, needs)
}

// "guide" appears in both documents (guide.md's name, readme.md's
// content), so df=2 and IDF = ln(0.2) is negative. With a negative IDF
// the heavier name-field weight amplifies the negative contribution
// rather than promoting the match, so readme.md (the lighter, content-only
// hit) scores higher than guide.md. This is the mandated unclamped IDF
// rule overriding the positive-IDF intuition that name-weighting always
// promotes a name match; see DESIGN.md for the worked-out numbers.
func TestS4FieldWeighting(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("readme.md", 1, map[string]string{"name": "readme", "extension": "md", "content": "installation guide"}))
	require.NoError(t, b.Add("guide.md", 1, map[string]string{"name": "guide", "extension": "md", "content": "another document"}))

	results, err := b.Search("guide")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "readme.md", results[0].Path)
	assert.Equal(t, "guide.md", results[1].Path)
	assert.Less(t, results[0].Score, 0.0)
	assert.Less(t, results[1].Score, results[0].Score)
}

func TestS6EmptyQuery(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))

	results, err := b.Search("")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = b.Search("   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRequiresReindexingUnknownPath(t *testing.T) {
	b := newTestBackend(t)
	needs, err := b.RequiresReindexing("missing.txt", 1)
	require.NoError(t, err)
	assert.True(t, needs)
}

func TestRemoveIsIdempotent(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Remove("nonexistent.txt"))
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))
	require.NoError(t, b.Remove("a.txt"))
	require.NoError(t, b.Remove("a.txt"))
	stats, err := b.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Docs)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Config{Weights: config.Default().Weights, B: 0.75, K1: 1.5, SnapshotFileName: ".local_search_engine.json"}
	b, err := Open(dir, cfg, logging.New("test"))
	require.NoError(t, err)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha beta"}))
	require.NoError(t, b.Snapshot())

	b2, err := Open(dir, cfg, logging.New("test"))
	require.NoError(t, err)
	stats, err := b2.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Docs)
	needs, err := b2.RequiresReindexing("a.txt", 1)
	require.NoError(t, err)
	assert.False(t, needs)
}
