package main

import (
	"context"
	"flag"
	"log"

	"github.com/david/project-radar/internal/db"
	"github.com/david/project-radar/internal/intel"
)

// Trains both models from database ground truth and reports the results.
// The in-process model state is discarded on exit; this tool exists to
// validate the training data before enabling the server's train endpoints.
func main() {
	skipClassifier := flag.Bool("skip-classifier", false, "skip classifier training")
	skipWin := flag.Bool("skip-win", false, "skip win model training")
	flag.Parse()

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	engine := intel.NewEngine(intel.DefaultScoringConfig(), store, nil, nil, store)

	if !*skipClassifier {
		samples, err := store.ClassifierTrainingSamples(ctx)
		if err != nil {
			log.Fatalf("Loading classifier samples: %v", err)
		}
		report, err := engine.TrainClassifier(samples)
		if err != nil {
			log.Fatalf("Classifier training failed: %v", err)
		}
		log.Printf("Classifier: %d samples, type accuracy %.3f, stage accuracy %.3f",
			report.Samples, report.TypeAccuracy, report.StageAccuracy)
	}

	if !*skipWin {
		participations, err := store.DecidedParticipations(ctx)
		if err != nil {
			log.Fatalf("Loading participations: %v", err)
		}

		var features []intel.WinFeatures
		var outcomes []bool
		for _, part := range participations {
			project, err := store.GetProject(ctx, part.ProjectID)
			if err != nil {
				continue
			}
			company, err := store.GetCompany(ctx, part.CompanyID)
			if err != nil {
				continue
			}
			f, err := intel.BuildWinFeatures(ctx, store, project, company)
			if err != nil {
				continue
			}
			features = append(features, f)
			outcomes = append(outcomes, *part.Won)
		}

		if err := engine.TrainWinModel(features, outcomes); err != nil {
			log.Fatalf("Win model training failed: %v", err)
		}
		log.Printf("Win model: %d samples", len(features))
		for name, weight := range engine.WinFeatureImportance() {
			log.Printf("  %-22s %.4f", name, weight)
		}
	}
}
