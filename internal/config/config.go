// Package config collects the tunables that would otherwise be magic
// numbers scattered across the engine, crawler and server: BM25F
// parameters, the snapshot/database file names, and the default
// listen address.
package config

import "github.com/anomitroid/local-search-engine/internal/model"

// Config bundles every knob a deployment might plausibly want to
// change without recompiling.
type Config struct {
	Weights model.FieldWeights
	B       float64
	K1      float64

	ListenAddress    string
	SnapshotFileName string
	SQLiteFileName   string

	Stem bool
}

// Default returns the configuration the original project shipped
// with: Okapi BM25F with b=0.75 and k1=1.5 across every field, snapshot
// persistence under .local_search_engine.json, and stemming enabled.
func Default() Config {
	return Config{
		Weights:          model.DefaultWeights(),
		B:                0.75,
		K1:               1.5,
		ListenAddress:    "127.0.0.1:6969",
		SnapshotFileName: ".local_search_engine.json",
		SQLiteFileName:   "index.db",
		Stem:             true,
	}
}
