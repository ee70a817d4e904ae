// Package memory implements the in-memory model.Model backend: the
// whole corpus lives in process memory as Go maps, with a JSON
// snapshot written to disk so a restart doesn't force a full re-crawl.
// Grounded on the gob-based BM25Index in the example devops tooling,
// adapted to JSON (to match the original project's on-disk format) and
// to the field-weighted BM25F scorer in internal/model.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anomitroid/local-search-engine/internal/config"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/anomitroid/local-search-engine/internal/model"
	"github.com/anomitroid/local-search-engine/internal/token"
)

type fieldEntry struct {
	TermFreq map[string]int
	Length   int
}

type document struct {
	Fields       map[string]fieldEntry
	LastModified int64
}

// Backend is the in-memory model.Model implementation. It is not
// internally synchronized: callers (the engine) are expected to guard
// every method call with their own mutex, matching the single-lock
// concurrency model the rest of the system uses.
type Backend struct {
	snapshotPath string
	pipeline     token.Pipeline
	weights      model.FieldWeights
	k1, b        float64
	log          logging.Logger

	docs map[string]*document
	df   map[string]int

	avgLen map[string]float64
	idf    map[string]float64

	dirty bool
}

// Open loads (or initializes) the in-memory backend rooted at dir,
// reading dir/<config.SnapshotFileName> if present.
func Open(dir string, cfg config.Config, log logging.Logger) (*Backend, error) {
	b := &Backend{
		snapshotPath: filepath.Join(dir, cfg.SnapshotFileName),
		pipeline:     token.NewPipeline(cfg.Stem),
		weights:      cfg.Weights,
		k1:           cfg.K1,
		b:            cfg.B,
		log:          log,
		docs:         make(map[string]*document),
		df:           make(map[string]int),
	}
	if err := b.load(); err != nil {
		return nil, err
	}
	b.rebuildDerivedCaches()
	return b, nil
}

type snapshotFile struct {
	Docs map[string]snapshotDoc `json:"docs"`
	DF   map[string]int         `json:"df"`
}

type snapshotDoc struct {
	Fields       map[string]snapshotField `json:"fields"`
	LastModified int64                    `json:"last_modified"`
}

// snapshotField serializes as a two-element JSON array, [termFreq,
// length], matching the tuple shape the original project's on-disk
// format used for a field's statistics.
type snapshotField struct {
	TermFreq map[string]int
	Length   int
}

func (f snapshotField) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{f.TermFreq, f.Length})
}

func (f *snapshotField) UnmarshalJSON(b []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		return err
	}
	if err := json.Unmarshal(tuple[0], &f.TermFreq); err != nil {
		return err
	}
	return json.Unmarshal(tuple[1], &f.Length)
}

func (b *Backend) load() error {
	data, err := os.ReadFile(b.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: reading snapshot: %v", model.ErrIO, err)
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		b.log.Warn("snapshot corrupt, starting fresh", "path", b.snapshotPath, "error", err)
		return nil
	}
	for path, sd := range snap.Docs {
		fields := make(map[string]fieldEntry, len(sd.Fields))
		for name, sf := range sd.Fields {
			fields[name] = fieldEntry{TermFreq: sf.TermFreq, Length: sf.Length}
		}
		b.docs[path] = &document{Fields: fields, LastModified: sd.LastModified}
	}
	for term, df := range snap.DF {
		b.df[term] = df
	}
	return nil
}

// Snapshot persists the current corpus to disk. Called by the
// orchestrator after a crawl pass that indexed at least one document,
// still under the engine's lock.
func (b *Backend) Snapshot() error {
	snap := snapshotFile{
		Docs: make(map[string]snapshotDoc, len(b.docs)),
		DF:   b.df,
	}
	for path, doc := range b.docs {
		fields := make(map[string]snapshotField, len(doc.Fields))
		for name, fe := range doc.Fields {
			fields[name] = snapshotField{TermFreq: fe.TermFreq, Length: fe.Length}
		}
		snap.Docs[path] = snapshotDoc{Fields: fields, LastModified: doc.LastModified}
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: marshaling snapshot: %v", model.ErrPersistence, err)
	}
	tmp := b.snapshotPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing snapshot: %v", model.ErrPersistence, err)
	}
	if err := os.Rename(tmp, b.snapshotPath); err != nil {
		return fmt.Errorf("%w: renaming snapshot: %v", model.ErrPersistence, err)
	}
	b.dirty = false
	return nil
}

// Add tokenizes fields with the backend's pipeline and (re)indexes the
// document at path, replacing any prior version first.
func (b *Backend) Add(path string, lastModified int64, fields map[string]string) error {
	b.removeLocked(path)

	docFields := make(map[string]fieldEntry, len(fields))
	seen := make(map[string]bool)
	for name, content := range fields {
		toks := b.pipeline.Tokenize(content)
		tf := make(map[string]int, len(toks))
		for _, t := range toks {
			tf[t]++
			seen[t] = true
		}
		docFields[name] = fieldEntry{TermFreq: tf, Length: len(toks)}
	}
	b.docs[path] = &document{Fields: docFields, LastModified: lastModified}
	for t := range seen {
		b.df[t]++
	}
	b.dirty = true
	b.rebuildDerivedCaches()
	return nil
}

// Remove deletes the document at path, if present.
func (b *Backend) Remove(path string) error {
	if b.removeLocked(path) {
		b.dirty = true
		b.rebuildDerivedCaches()
	}
	return nil
}

func (b *Backend) removeLocked(path string) bool {
	doc, ok := b.docs[path]
	if !ok {
		return false
	}
	seen := make(map[string]bool)
	for _, fe := range doc.Fields {
		for t := range fe.TermFreq {
			seen[t] = true
		}
	}
	for t := range seen {
		if v := b.df[t]; v > 0 {
			b.df[t] = v - 1
		}
	}
	delete(b.docs, path)
	return true
}

// RequiresReindexing reports whether path is unindexed, or indexed
// with a last-modified time strictly older than lastModified.
func (b *Backend) RequiresReindexing(path string, lastModified int64) (bool, error) {
	doc, ok := b.docs[path]
	if !ok {
		return true, nil
	}
	return doc.LastModified < lastModified, nil
}

// Search scores every indexed document against query, discarding only
// the degenerate NaN case, and returns the rest ranked by descending
// score then ascending path.
func (b *Backend) Search(query string) ([]model.Result, error) {
	tokens := b.pipeline.Tokenize(query)
	if len(tokens) == 0 {
		return []model.Result{}, nil
	}
	results := make([]model.Result, 0, len(b.docs))
	for path, doc := range b.docs {
		fields := make(model.DocFields, len(doc.Fields))
		for name, fe := range doc.Fields {
			fields[name] = model.FieldData{TermFreq: fe.TermFreq, Length: fe.Length}
		}
		score := model.ScoreDocument(tokens, fields, b.idf, b.avgLen, b.weights, b.k1, b.b)
		if score != score { // NaN guard: discard degenerate scores
			continue
		}
		results = append(results, model.Result{Path: path, Score: score})
	}
	sortResults(results)
	return results, nil
}

func sortResults(results []model.Result) {
	for i := 1; i < len(results); i++ {
		for j := i; j > 0 && less(results[j], results[j-1]); j-- {
			results[j], results[j-1] = results[j-1], results[j]
		}
	}
}

func less(a, b model.Result) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Path < b.Path
}

// Stats reports the current document and distinct-term counts.
func (b *Backend) Stats() (model.Stats, error) {
	return model.Stats{Docs: len(b.docs), Terms: len(b.df)}, nil
}

// Close flushes a pending snapshot if one is outstanding.
func (b *Backend) Close() error {
	if b.dirty {
		return b.Snapshot()
	}
	return nil
}

func (b *Backend) rebuildDerivedCaches() {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, doc := range b.docs {
		for field, fe := range doc.Fields {
			sums[field] += fe.Length
			counts[field]++
		}
	}
	avgLen := make(map[string]float64, len(counts))
	for field, c := range counts {
		if c > 0 {
			avgLen[field] = float64(sums[field]) / float64(c)
		}
	}
	b.avgLen = avgLen

	n := len(b.docs)
	idf := make(map[string]float64, len(b.df))
	for t, df := range b.df {
		idf[t] = model.IDF(n, df)
	}
	b.idf = idf
}
