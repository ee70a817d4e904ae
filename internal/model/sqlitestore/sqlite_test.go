package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/anomitroid/local-search-engine/internal/config"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	b, err := Open(path, config.Config{
		Weights: config.Default().Weights,
		B:       0.75,
		K1:      1.5,
		Stem:    false,
	}, logging.New("test"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteS1TwoDocumentCorpus(t *testing.T) {
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
}

func TestSQLiteS2UpdateSemantics(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))
	require.NoError(t, b.Add("a.txt", 2, map[string]string{"content": "beta"}))

	stats, err := b.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Docs)

	var alphaFreq, betaFreq int
	_ = b.db.QueryRow(`SELECT freq FROM DocFreq WHERE term = ?`, "ALPHA").Scan(&alphaFreq)
	require.NoError(t, b.db.QueryRow(`SELECT freq FROM DocFreq WHERE term = ?`, "BETA").Scan(&betaFreq))
	assert.Equal(t, 0, alphaFreq)
	assert.Equal(t, 1, betaFreq)
}

func TestSQLiteS3SkipUnchanged(t *testing.T) {
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
func TestSQLiteS4FieldWeighting(t *testing.T) {
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

func TestSQLiteS6EmptyQuery(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"content": "alpha"}))

	results, err := b.Search("")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSQLiteRemoveDecrementsOncePerDistinctTerm(t *testing.T) {
	b := newTestBackend(t)
	// "dup" appears in two fields of the same document; removing it
	// must only decrement DocFreq["DUP"] by one, not two.
	require.NoError(t, b.Add("a.txt", 1, map[string]string{"name": "dup", "content": "dup"}))
	require.NoError(t, b.Add("b.txt", 1, map[string]string{"content": "dup"}))

	var before int
	require.NoError(t, b.db.QueryRow(`SELECT freq FROM DocFreq WHERE term = ?`, "DUP").Scan(&before))
	require.Equal(t, 2, before)

	require.NoError(t, b.Remove("a.txt"))

	var after int
	require.NoError(t, b.db.QueryRow(`SELECT freq FROM DocFreq WHERE term = ?`, "DUP").Scan(&after))
	assert.Equal(t, 1, after)
}
