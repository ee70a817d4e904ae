// Package model defines the storage-agnostic contract that both the
// in-memory and relational backends implement, plus the shared BM25F
// scoring function the two backends call into so their ranking
// behavior stays identical regardless of where the term statistics are
// kept.
package model

// Field names recognized by the scorer's weight table. The crawler is
// free to attach additional field names to a document (they fall back
// to the "other" weight), but these three are the ones the original
// project's document shape always carries.
const (
	FieldName      = "name"
	FieldContent   = "content"
	FieldExtension = "extension"
)

// Result is a single ranked search hit.
type Result struct {
	Path  string
	Score float64
}

// Stats is the snapshot returned by Model.Stats, surfaced verbatim by
// the /api/stats endpoint.
type Stats struct {
	Docs  int
	Terms int
}

// Model is the interface the crawler and the query server depend on.
// Both the in-memory and the relational backend implement it fully, so
// neither the crawler nor the HTTP layer ever needs to know which one
// is in play.
type Model interface {
	// Add indexes (or re-indexes) the document at path. fields maps
	// field name to the field's extracted text; Add tokenizes each
	// field itself so that index-time and query-time tokenization are
	// guaranteed to agree.
	Add(path string, lastModified int64, fields map[string]string) error

	// Remove deletes the document at path, if present. Removing a path
	// that is not indexed is not an error.
	Remove(path string) error

	// RequiresReindexing reports whether path is unindexed or stale
	// relative to lastModified (a Unix timestamp).
	RequiresReindexing(path string, lastModified int64) (bool, error)

	// Search tokenizes query with the same pipeline used at index time
	// and returns the scored documents, ordered by descending score
	// and, for ties, ascending path. Scores may be zero or negative,
	// since IDF is not clamped.
	Search(query string) ([]Result, error)

	// Stats reports corpus-wide counts for the /api/stats endpoint.
	Stats() (Stats, error)

	// Close releases any resources (open database handles, etc).
	Close() error
}

// FieldWeights holds the BM25F per-field weight w(f) used to combine a
// term's per-field contributions into one pseudo-frequency F(q, d)
// before applying the saturation curve.
type FieldWeights struct {
	Name      float64
	Content   float64
	Extension float64
	Other     float64
}

// DefaultWeights returns the weight table used by both backends unless
// overridden by configuration: names matter twice as much as body
// text, extensions a half as much, and anything else counts at parity
// with content.
func DefaultWeights() FieldWeights {
	return FieldWeights{Name: 2.0, Content: 1.0, Extension: 0.5, Other: 1.0}
}

// For returns the configured weight for field, falling back to Other
// for any field name outside the three named constants.
func (w FieldWeights) For(field string) float64 {
	switch field {
	case FieldName:
		return w.Name
	case FieldContent:
		return w.Content
	case FieldExtension:
		return w.Extension
	default:
		return w.Other
	}
}
