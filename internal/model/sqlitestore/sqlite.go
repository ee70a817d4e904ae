// Package sqlitestore implements the relational model.Model backend
// on top of modernc.org/sqlite, a CGo-free pure-Go SQLite driver.
// Grounded on the pragma-application pattern in the example corpus's
// mind-palace CLI index (Open applying journal_mode=WAL and
// foreign_keys=ON) and, for the scoring query shape, on the
// field-weighted accumulation in chriscorrea-bm25md's Corpus.Score.
package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"

	"github.com/anomitroid/local-search-engine/internal/config"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/anomitroid/local-search-engine/internal/model"
	"github.com/anomitroid/local-search-engine/internal/token"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Backend is the relational model.Model implementation. Like the
// in-memory backend it performs no internal locking: the engine's
// single mutex serializes every call.
type Backend struct {
	db       *sql.DB
	pipeline token.Pipeline
	weights  model.FieldWeights
	k1, b    float64
	log      logging.Logger
}

// Open opens (creating if necessary) the SQLite database at path and
// applies the schema.
func Open(path string, cfg config.Config, log logging.Logger) (*Backend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", model.ErrPersistence, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; one connection avoids SQLITE_BUSY

	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return nil, fmt.Errorf("%w: setting journal_mode: %v", model.ErrPersistence, err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		return nil, fmt.Errorf("%w: setting foreign_keys: %v", model.ErrPersistence, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("%w: applying schema: %v", model.ErrPersistence, err)
	}

	log.Info("relational backend opened", "path", path)
	return &Backend{
		db:       db,
		pipeline: token.NewPipeline(cfg.Stem),
		weights:  cfg.Weights,
		k1:       cfg.K1,
		b:        cfg.B,
		log:      log,
	}, nil
}

// Close closes the underlying database handle.
func (b *Backend) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("%w: closing database: %v", model.ErrPersistence, err)
	}
	return nil
}

// Add tokenizes fields and replaces any prior indexed version of path
// inside a single transaction.
func (b *Backend) Add(path string, lastModified int64, fields map[string]string) error {
	ctx := context.Background()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", model.ErrPersistence, err)
	}
	defer tx.Rollback()

	if err := removeTx(ctx, tx, path); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO Documents(path, last_modified) VALUES (?, ?)`, path, lastModified)
	if err != nil {
		return fmt.Errorf("%w: inserting document: %v", model.ErrPersistence, err)
	}
	docID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%w: reading inserted id: %v", model.ErrPersistence, err)
	}

	allTerms := make(map[string]bool)
	for fieldName, content := range fields {
		toks := b.pipeline.Tokenize(content)
		tf := make(map[string]int, len(toks))
		for _, t := range toks {
			tf[t]++
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO DocumentField(doc_id, field, field_term_count) VALUES (?, ?, ?)`,
			docID, fieldName, len(toks)); err != nil {
			return fmt.Errorf("%w: inserting document field: %v", model.ErrPersistence, err)
		}
		for term, freq := range tf {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO TermFreq(term, doc_id, field, freq) VALUES (?, ?, ?, ?)`,
				term, docID, fieldName, freq); err != nil {
				return fmt.Errorf("%w: inserting term frequency: %v", model.ErrPersistence, err)
			}
			allTerms[term] = true
		}
	}

	for term := range allTerms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO DocFreq(term, freq) VALUES (?, 1)
			 ON CONFLICT(term) DO UPDATE SET freq = freq + 1`,
			term); err != nil {
			return fmt.Errorf("%w: updating document frequency: %v", model.ErrPersistence, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", model.ErrPersistence, err)
	}
	return nil
}

// Remove deletes path, decrementing DocFreq once per distinct term the
// old document contributed (not once per field row, which is the bug
// the relational backend's original remove loop had).
func (b *Backend) Remove(path string) error {
	ctx := context.Background()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", model.ErrPersistence, err)
	}
	defer tx.Rollback()
	if err := removeTx(ctx, tx, path); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", model.ErrPersistence, err)
	}
	return nil
}

func removeTx(ctx context.Context, tx *sql.Tx, path string) error {
	var docID int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM Documents WHERE path = ?`, path).Scan(&docID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: looking up document: %v", model.ErrPersistence, err)
	}

	rows, err := tx.QueryContext(ctx, `SELECT DISTINCT term FROM TermFreq WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("%w: listing terms: %v", model.ErrPersistence, err)
	}
	var terms []string
	for rows.Next() {
		var term string
		if err := rows.Scan(&term); err != nil {
			rows.Close()
			return fmt.Errorf("%w: scanning term: %v", model.ErrPersistence, err)
		}
		terms = append(terms, term)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: iterating terms: %v", model.ErrPersistence, err)
	}

	for _, term := range terms {
		if _, err := tx.ExecContext(ctx,
			`UPDATE DocFreq SET freq = CASE WHEN freq > 0 THEN freq - 1 ELSE 0 END WHERE term = ?`,
			term); err != nil {
			return fmt.Errorf("%w: decrementing document frequency: %v", model.ErrPersistence, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM Documents WHERE id = ?`, docID); err != nil {
		return fmt.Errorf("%w: deleting document: %v", model.ErrPersistence, err)
	}
	return nil
}

// RequiresReindexing reports whether path is unindexed or stale.
func (b *Backend) RequiresReindexing(path string, lastModified int64) (bool, error) {
	var lm int64
	err := b.db.QueryRow(`SELECT last_modified FROM Documents WHERE path = ?`, path).Scan(&lm)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: looking up document: %v", model.ErrPersistence, err)
	}
	return lm < lastModified, nil
}

// Stats reports the total document count and distinct term count.
func (b *Backend) Stats() (model.Stats, error) {
	var docs, terms int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM Documents`).Scan(&docs); err != nil {
		return model.Stats{}, fmt.Errorf("%w: counting documents: %v", model.ErrPersistence, err)
	}
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM DocFreq`).Scan(&terms); err != nil {
		return model.Stats{}, fmt.Errorf("%w: counting terms: %v", model.ErrPersistence, err)
	}
	return model.Stats{Docs: docs, Terms: terms}, nil
}

// Search tokenizes query, pulls the corpus-wide statistics it needs
// (document count, per-field average length, per-term IDF) plus the
// handful of TermFreq/DocumentField rows that actually match a query
// term, and folds them through the same ScoreDocument function the
// in-memory backend uses.
func (b *Backend) Search(query string) ([]model.Result, error) {
	tokens := b.pipeline.Tokenize(query)
	if len(tokens) == 0 {
		return []model.Result{}, nil
	}

	var n int
	if err := b.db.QueryRow(`SELECT COUNT(*) FROM Documents`).Scan(&n); err != nil {
		return nil, fmt.Errorf("%w: counting documents: %v", model.ErrPersistence, err)
	}
	if n == 0 {
		return []model.Result{}, nil
	}

	avgLen, err := b.avgFieldLength()
	if err != nil {
		return nil, err
	}

	distinct := dedupe(tokens)
	idf := make(map[string]float64, len(distinct))
	for _, term := range distinct {
		var df int
		err := b.db.QueryRow(`SELECT freq FROM DocFreq WHERE term = ?`, term).Scan(&df)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: looking up document frequency: %v", model.ErrPersistence, err)
		}
		idf[term] = model.IDF(n, df)
	}

	placeholders, args := inClause(distinct)
	rows, err := b.db.Query(`
		SELECT d.path, tf.field, tf.term, tf.freq, df.field_term_count
		FROM TermFreq tf
		JOIN Documents d ON d.id = tf.doc_id
		JOIN DocumentField df ON df.doc_id = tf.doc_id AND df.field = tf.field
		WHERE tf.term IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying term frequencies: %v", model.ErrPersistence, err)
	}
	defer rows.Close()

	perDoc := make(map[string]model.DocFields)
	for rows.Next() {
		var path, field, term string
		var freq, length int
		if err := rows.Scan(&path, &field, &term, &freq, &length); err != nil {
			return nil, fmt.Errorf("%w: scanning term frequency row: %v", model.ErrPersistence, err)
		}
		fields, ok := perDoc[path]
		if !ok {
			fields = make(model.DocFields)
			perDoc[path] = fields
		}
		fd, ok := fields[field]
		if !ok {
			fd = model.FieldData{TermFreq: make(map[string]int), Length: length}
		}
		fd.TermFreq[term] = freq
		fields[field] = fd
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating term frequency rows: %v", model.ErrPersistence, err)
	}

	results := make([]model.Result, 0, len(perDoc))
	for path, fields := range perDoc {
		score := model.ScoreDocument(tokens, fields, idf, avgLen, b.weights, b.k1, b.b)
		if score != score {
			continue
		}
		results = append(results, model.Result{Path: path, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})
	return results, nil
}

func (b *Backend) avgFieldLength() (map[string]float64, error) {
	rows, err := b.db.Query(`SELECT field, AVG(field_term_count) FROM DocumentField GROUP BY field`)
	if err != nil {
		return nil, fmt.Errorf("%w: averaging field lengths: %v", model.ErrPersistence, err)
	}
	defer rows.Close()
	avg := make(map[string]float64)
	for rows.Next() {
		var field string
		var mean float64
		if err := rows.Scan(&field, &mean); err != nil {
			return nil, fmt.Errorf("%w: scanning average field length: %v", model.ErrPersistence, err)
		}
		avg[field] = mean
	}
	return avg, rows.Err()
}

func dedupe(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func inClause(terms []string) (string, []any) {
	placeholders := ""
	args := make([]any, len(terms))
	for i, t := range terms {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args[i] = t
	}
	return placeholders, args
}
