package ingest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/david/project-radar/internal/models"
)

// Classifier assigns type, stage and size to project text.
type Classifier interface {
	Classify(ctx context.Context, title, description string, useInference bool) *models.ClassificationResult
}

// ProjectWriter persists normalized projects.
type ProjectWriter interface {
	UpsertProject(ctx context.Context, p *models.Project) error
}

// Pipeline turns scraped pages into classified project records.
type Pipeline struct {
	registry   *Registry
	fetcher    *CollyFetcher
	classifier Classifier
	writer     ProjectWriter

	UseInference bool
	PDFClient    *http.Client
}

// PipelineStats summarizes one ingestion run.
type PipelineStats struct {
	SourceID string `json:"source_id"`
	Fetched  int    `json:"fetched"`
	Stored   int    `json:"stored"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
}

func NewPipeline(registry *Registry, fetcher *CollyFetcher, classifier Classifier, writer ProjectWriter) *Pipeline {
	return &Pipeline{
		registry:   registry,
		fetcher:    fetcher,
		classifier: classifier,
		writer:     writer,
	}
}

// RunSource fetches, normalizes and stores every listing for one source.
func (p *Pipeline) RunSource(ctx context.Context, sourceID string) (*PipelineStats, error) {
	source, ok := p.registry.Get(sourceID)
	if !ok {
		return nil, fmt.Errorf("unknown source %q", sourceID)
	}

	pages, err := p.fetcher.FetchListing(source)
	if err != nil {
		return nil, err
	}

	stats := &PipelineStats{SourceID: sourceID, Fetched: len(pages)}
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		project, err := p.Normalize(ctx, page)
		if err != nil {
			stats.Skipped++
			continue
		}

		if err := p.writer.UpsertProject(ctx, project); err != nil {
			log.Printf("storing project from %s failed: %v", page.URL, err)
			stats.Failed++
			continue
		}
		stats.Stored++
	}

	log.Printf("ingested source %s: fetched=%d stored=%d skipped=%d failed=%d",
		sourceID, stats.Fetched, stats.Stored, stats.Skipped, stats.Failed)
	return stats, nil
}

// RunAll runs every registered source, continuing past per-source errors.
func (p *Pipeline) RunAll(ctx context.Context) []PipelineStats {
	var all []PipelineStats
	for i := range p.registry.Sources {
		stats, err := p.RunSource(ctx, p.registry.Sources[i].ID)
		if err != nil {
			log.Printf("source %s failed: %v", p.registry.Sources[i].ID, err)
			continue
		}
		all = append(all, *stats)
	}
	return all
}

// Normalize converts one raw page into a project record. Pages without a
// usable title are rejected.
func (p *Pipeline) Normalize(ctx context.Context, page RawPage) (*models.Project, error) {
	title := cleanText(page.Title)
	description := HTMLToText(page.Content)
	if title == "" {
		return nil, fmt.Errorf("page %s has no title", page.URL)
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          projectID(page),
		Title:       title,
		Description: description,
		Currency:    "USD",
		Region:      page.Source.Region,
		Country:     page.Source.Country,
		Source:      sourceKind(page.Source.Kind),
		SourceURL:   page.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result := p.classifier.Classify(ctx, title, description, p.UseInference)
	project.ProjectType = result.ProjectType
	project.Stage = result.Stage

	entities := ExtractEntities(title + "\n" + description)
	if value, ok := BestProjectValue(entities); ok {
		project.EstimatedValue = &value
	}
	if deadline, ok := NextFutureDate(entities, now); ok {
		project.BidDeadline = &deadline
	}
	if project.Address == "" && len(entities.Locations) > 0 {
		project.Address = entities.Locations[0]
	}

	// Tender portals publish dates and amounts in the PDF body rather than
	// the listing page. The document fills gaps only; listing data wins.
	if project.Source == models.SourceTender && isPDFLink(page.URL) {
		doc, err := FetchTenderPDF(ctx, p.PDFClient, page.URL)
		if err != nil {
			log.Printf("tender pdf %s: %v", page.URL, err)
		} else {
			if project.BidDeadline == nil {
				project.BidDeadline = doc.BidDeadline
			}
			if project.EstimatedValue == nil {
				project.EstimatedValue = doc.Value
			}
		}
	}

	return project, nil
}

func isPDFLink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}

// projectID derives a stable id from the source URL so re-scraping the
// same listing updates the existing row.
func projectID(page RawPage) uuid.UUID {
	key := page.URL
	if key == "" {
		key = page.Source.ID + "|" + page.Title
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key))
}

func sourceKind(kind string) models.ProjectSource {
	switch kind {
	case "permit":
		return models.SourcePermit
	case "tender":
		return models.SourceTender
	case "news":
		return models.SourceNews
	default:
		return models.SourceWebScrape
	}
}
