// Command trigramd serves a trigram substring index over HTTP: append
// documents, query candidates, prune, and inspect corpus stats.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/threatflux/trigramdex/corpus"
	"github.com/threatflux/trigramdex/server"
)

var (
	Debug        = flag.Bool("debug", false, "Enable debug logging")
	Port         = flag.String("port", ":8080", "Server port")
	DataFile     = flag.String("data", "corpus.yaml", "Corpus snapshot file path")
	InitialSize  = flag.Int64("size", 1<<20, "Initial snapshot file size in bytes")
	MaxSize      = flag.Int64("maxsize", 256<<20, "Maximum snapshot file size in bytes (not enforced: the snapshot grows as needed)")
	SyncInterval = flag.Duration("sync", time.Minute, "Corpus snapshot sync interval")
)

func main() {
	flag.Parse()

	docs, err := corpus.Open(*DataFile, corpus.Options{
		InitialSize:  *InitialSize,
		MaxSize:      *MaxSize,
		SyncInterval: *SyncInterval,
	})
	if err != nil {
		log.Fatalf("failed to open corpus: %v", err)
	}
	defer func() {
		if err := docs.Close(); err != nil {
			log.Fatalf("failed to close corpus: %v", err)
		}
	}()

	log.Printf("loaded %d documents from %s, building trigram index", docs.Len(), *DataFile)
	srv := server.New(docs, *Debug)

	log.Printf("starting server on %s", *Port)
	if err := srv.Run(*Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
