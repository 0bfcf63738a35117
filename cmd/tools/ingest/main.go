package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/david/project-radar/internal/ai"
	"github.com/david/project-radar/internal/db"
	"github.com/david/project-radar/internal/ingest"
	"github.com/david/project-radar/internal/intel"
)

// Runs ingestion for one registry source, or all of them, from the
// command line. Useful for cron jobs and for testing new source configs
// without going through the admin API.
func main() {
	sourceID := flag.String("source", "", "registry source id (empty runs all sources)")
	useInference := flag.Bool("inference", false, "classify scraped pages with the inference model")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	registry, err := ingest.LoadRegistry()
	if err != nil {
		log.Fatalf("Loading registry: %v", err)
	}

	store := db.NewStore(pool)
	aiClient := ai.NewOllamaClient(os.Getenv("OLLAMA_HOST"), "", os.Getenv("OLLAMA_GEN_MODEL"))
	engine := intel.NewEngine(intel.DefaultScoringConfig(), store, aiClient, aiClient, store)

	pipeline := ingest.NewPipeline(registry, ingest.NewCollyFetcher(), engine, store)
	pipeline.UseInference = *useInference

	if *sourceID != "" {
		stats, err := pipeline.RunSource(ctx, *sourceID)
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		log.Printf("Done: fetched=%d stored=%d skipped=%d failed=%d",
			stats.Fetched, stats.Stored, stats.Skipped, stats.Failed)
		return
	}

	results := pipeline.RunAll(ctx)
	for _, stats := range results {
		log.Printf("%s: fetched=%d stored=%d skipped=%d failed=%d",
			stats.SourceID, stats.Fetched, stats.Stored, stats.Skipped, stats.Failed)
	}
}
