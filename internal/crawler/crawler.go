// Package crawler walks a directory tree, skips what shouldn't be
// indexed, and feeds extracted field text into an Indexer. Grounded on
// the directory-walking AddDocument loop in the example devops
// local-kb-index-builder (loadFilesFromDirectory), adapted to the
// three-field document shape and re-crawl skip logic the rest of this
// project requires.
package crawler

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/anomitroid/local-search-engine/internal/extract"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/anomitroid/local-search-engine/internal/token"
)

// Indexer is the subset of model.Model the crawler depends on. The
// engine satisfies it directly, keeping the crawler ignorant of the
// mutex and backend selection above it.
type Indexer interface {
	RequiresReindexing(path string, lastModified int64) (bool, error)
	Add(path string, lastModified int64, fields map[string]string) error
}

// Stats summarizes one crawl pass.
type Stats struct {
	Processed int
	Skipped   int
}

// Crawler walks a root directory and indexes the files it recognizes.
type Crawler struct {
	registry extract.Registry
	indexer  Indexer
	log      logging.Logger
}

// New returns a Crawler using registry to extract text and indexer to
// store it.
func New(registry extract.Registry, indexer Indexer, log logging.Logger) *Crawler {
	return &Crawler{registry: registry, indexer: indexer, log: log}
}

// Walk recursively visits root, indexing every file whose extension is
// recognized and whose last-modified time is newer than what's already
// indexed. Dotfiles and dot-directories (basename starting with '.')
// are skipped entirely, the latter without recursing into them.
func (c *Crawler) Walk(root string) (Stats, error) {
	var stats Stats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.log.Warn("walk error", "path", path, "error", err)
			stats.Skipped++
			return nil
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c.visitFile(path, d, &stats)
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walking %s: %w", root, err)
	}
	return stats, nil
}

func (c *Crawler) visitFile(path string, d fs.DirEntry, stats *Stats) {
	info, err := d.Info()
	if err != nil {
		c.log.Warn("stat failed", "path", path, "error", err)
		stats.Skipped++
		return
	}
	lastModified := info.ModTime().Unix()

	needsReindex, err := c.indexer.RequiresReindexing(path, lastModified)
	if err != nil {
		c.log.Error("requires_reindexing failed", "path", path, "error", err)
		stats.Skipped++
		return
	}
	if !needsReindex {
		stats.Skipped++
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	extractor, ok := c.registry[ext]
	if !ok {
		stats.Skipped++
		return
	}

	content, err := extractor.Extract(path)
	if err != nil {
		c.log.Warn("extraction failed", "path", path, "error", err)
		stats.Skipped++
		return
	}

	name := d.Name()
	base := strings.TrimSuffix(name, filepath.Ext(name))
	fields := map[string]string{
		token.FieldName:      base,
		token.FieldExtension: ext,
		token.FieldContent:   content,
	}
	if err := c.indexer.Add(path, lastModified, fields); err != nil {
		c.log.Error("add failed", "path", path, "error", err)
		stats.Skipped++
		return
	}
	stats.Processed++
}
