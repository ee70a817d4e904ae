// Command local-search-engine crawls a directory, builds a BM25F index
// of its text-bearing files, and serves a search box and a JSON query
// API over HTTP. Usage:
//
//	local-search-engine serve <directory> [address] [--sqlite]
//
// address defaults to 127.0.0.1:6969. By default the index lives in
// process memory and is snapshotted to <directory>/.local_search_engine.json;
// passing --sqlite stores it instead in a SQLite database alongside the
// binary's working directory.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/anomitroid/local-search-engine/internal/config"
	"github.com/anomitroid/local-search-engine/internal/crawler"
	"github.com/anomitroid/local-search-engine/internal/engine"
	"github.com/anomitroid/local-search-engine/internal/extract"
	"github.com/anomitroid/local-search-engine/internal/httpapi"
	"github.com/anomitroid/local-search-engine/internal/logging"
	"github.com/anomitroid/local-search-engine/internal/model"
	"github.com/anomitroid/local-search-engine/internal/model/memory"
	"github.com/anomitroid/local-search-engine/internal/model/sqlitestore"
)

func main() {
	log := logging.Default
	defer func() {
		if r := recover(); r != nil {
			log.Error("invariant violation, exiting", "error", r)
			os.Exit(1)
		}
	}()

	if err := run(log); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(log logging.Logger) error {
	if len(os.Args) < 2 || os.Args[1] != "serve" {
		printUsage()
		os.Exit(1)
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	useSQLite := fs.Bool("sqlite", false, "store the index in SQLite instead of in-memory JSON snapshots")
	noStem := fs.Bool("no-stem", false, "disable Porter/Snowball stemming")
	// Flags may come before, between or after the positional arguments:
	// parse repeatedly, taking one positional argument after each pass.
	var args []string
	rest := os.Args[2:]
	for {
		if err := fs.Parse(rest); err != nil {
			return err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		args = append(args, rest[0])
		rest = rest[1:]
	}
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	root := args[0]
	address := "127.0.0.1:6969"
	if len(args) > 1 {
		address = args[1]
	}

	cfg := config.Default()
	cfg.ListenAddress = address
	cfg.Stem = !*noStem

	var m model.Model
	var err error
	if *useSQLite {
		m, err = sqlitestore.Open(cfg.SQLiteFileName, cfg, log)
	} else {
		m, err = memory.Open(root, cfg, log)
	}
	if err != nil {
		return fmt.Errorf("opening backend: %w", err)
	}
	defer m.Close()

	eng := engine.New(m, log)
	c := crawler.New(extract.Default(), eng, log)
	go eng.RunCrawl(root, c)

	srv := httpapi.New(eng, log)
	return srv.Run(cfg.ListenAddress)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: local-search-engine serve <directory> [address] [--sqlite] [--no-stem]")
}
