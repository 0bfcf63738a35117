package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/david/project-radar/internal/db"
	"github.com/david/project-radar/internal/intel"
	"github.com/david/project-radar/internal/models"
)

func main() {
	companyFlag := flag.String("company", "", "company id to score against (required)")
	stage := flag.String("stage", "", "only score projects in this stage")
	region := flag.String("region", "", "only score projects in this region")
	limit := flag.Int("limit", 50, "max projects to score")
	flag.Parse()

	companyID, err := uuid.Parse(*companyFlag)
	if err != nil {
		log.Fatalf("-company must be a valid uuid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	store := db.NewStore(pool)
	company, err := store.GetCompany(ctx, companyID)
	if err != nil {
		log.Fatalf("Loading company: %v", err)
	}

	projects, err := store.ListProjects(ctx, db.ListParams{
		Stage:  *stage,
		Region: *region,
		Limit:  *limit,
	})
	if err != nil {
		log.Fatalf("Listing projects: %v", err)
	}
	if len(projects) == 0 {
		log.Fatal("No projects match the filters")
	}

	engine := intel.NewEngine(intel.DefaultScoringConfig(), store, nil, nil, store)

	refs := make([]*models.Project, len(projects))
	for i := range projects {
		refs[i] = &projects[i]
	}

	results, err := engine.ScoreBatch(ctx, refs, company)
	if err != nil {
		log.Fatalf("Scoring failed: %v", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Project", "Overall", "Category", "Fit", "Likelihood", "Size", "Timing", "Competition", "Recommendation"})

	for i, r := range results {
		t.AppendRow(table.Row{
			i + 1,
			truncate(r.ProjectTitle, 48),
			fmt.Sprintf("%.3f", r.OverallScore),
			r.Category,
			fmt.Sprintf("%.2f", r.Scores.Fit),
			fmt.Sprintf("%.2f", r.Scores.Likelihood),
			fmt.Sprintf("%.2f", r.Scores.Size),
			fmt.Sprintf("%.2f", r.Scores.Timing),
			fmt.Sprintf("%.2f", r.Scores.Competition),
			r.Recommendation,
		})
	}
	t.Render()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
