// Package engine is the orchestrator: it owns the single mutex that
// makes the HTTP accept loop and the background crawler goroutine
// linearizable with respect to the shared Model, per the project's
// single-lock concurrency model (the simplicity of one mutex outweighs
// finer-grained locking for a workload that's mostly "index once,
// query many").
package engine

import (
	"sync"

	"github.com/anomitroid/local-search-engine/internal/crawler"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/anomitroid/local-search-engine/internal/model"
)

// snapshotter is implemented by backends (currently only the in-memory
// one) that need an explicit flush-to-disk step after a crawl pass.
// Using an optional interface here, rather than adding Snapshot to
// model.Model, keeps the relational backend (which has nothing to
// flush; every Add already commits) from needing a no-op method.
type snapshotter interface {
	Snapshot() error
}

// Engine wraps a model.Model with the mutex that serializes every
// access to it, whether the caller is the query server or the
// background crawler.
type Engine struct {
	mu    sync.Mutex
	model model.Model
	log   logging.Logger
}

// New returns an Engine guarding m.
func New(m model.Model, log logging.Logger) *Engine {
	return &Engine{model: m, log: log}
}

// Add locks and delegates to the underlying Model.
func (e *Engine) Add(path string, lastModified int64, fields map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Add(path, lastModified, fields)
}

// RequiresReindexing locks and delegates to the underlying Model.
func (e *Engine) RequiresReindexing(path string, lastModified int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.RequiresReindexing(path, lastModified)
}

// Search locks and delegates to the underlying Model.
func (e *Engine) Search(query string) ([]model.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Search(query)
}

// Stats locks and delegates to the underlying Model.
func (e *Engine) Stats() (model.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Stats()
}

// Close locks and delegates to the underlying Model.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model.Close()
}

// RunCrawl performs one crawl pass over root using c, then — still
// under the lock — asks the backend to snapshot if it indexed at
// least one new document and the backend supports snapshotting.
// Intended to run on its own goroutine (T2 in the concurrency model)
// concurrently with the HTTP accept loop (T1).
func (e *Engine) RunCrawl(root string, c *crawler.Crawler) {
	stats, err := c.Walk(root)
	if err != nil {
		e.log.Error("crawl failed", "root", root, "error", err)
	}
	e.log.Info("crawl complete", "root", root, "processed", stats.Processed, "skipped", stats.Skipped)

	if stats.Processed == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	snap, ok := e.model.(snapshotter)
	if !ok {
		return
	}
	if err := snap.Snapshot(); err != nil {
		e.log.Error("snapshot failed", "error", err)
	}
}
