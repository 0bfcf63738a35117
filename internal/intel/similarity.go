package intel

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/david/project-radar/internal/models"
	"github.com/google/uuid"
)

// Embedder turns text into a fixed-dimension vector. Implemented by the
// Ollama client; any provider failure is surfaced so callers can skip
// similarity features rather than block on them.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher runs a stored-vector similarity query. Implemented by
// db.Store on top of pgvector.
type VectorSearcher interface {
	SearchSimilarProjects(ctx context.Context, embedding []float32, exclude uuid.UUID, limit int) ([]models.SimilarProject, error)
}

// embedTimeout bounds every embedding provider call.
const embedTimeout = 15 * time.Second

// EmbeddingsService wraps embedding generation and similarity search for
// projects and free-text queries.
type EmbeddingsService struct {
	embedder Embedder
	searcher VectorSearcher
}

func NewEmbeddingsService(embedder Embedder, searcher VectorSearcher) *EmbeddingsService {
	return &EmbeddingsService{embedder: embedder, searcher: searcher}
}

// ProjectText builds the text representation a project is embedded from:
// title, truncated description and key metadata.
func ProjectText(project *models.Project) string {
	parts := []string{project.Title}

	if project.Description != "" {
		desc := project.Description
		if len(desc) > 1000 {
			desc = desc[:1000]
		}
		parts = append(parts, desc)
	}
	if project.ProjectType != "" {
		parts = append(parts, fmt.Sprintf("Type: %s", project.ProjectType))
	}
	if project.Region != "" && project.Country != "" {
		parts = append(parts, fmt.Sprintf("Location: %s, %s", project.Region, project.Country))
	}
	if project.EstimatedValue != nil {
		parts = append(parts, fmt.Sprintf("Value: $%.0f", *project.EstimatedValue))
	}

	return strings.Join(parts, " | ")
}

// EmbedProject generates the embedding for a project.
func (s *EmbeddingsService) EmbedProject(ctx context.Context, project *models.Project) ([]float32, error) {
	return s.EmbedText(ctx, ProjectText(project))
}

// EmbedText generates an embedding for arbitrary text (search queries).
func (s *EmbeddingsService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	if len(text) > 8000 {
		text = text[:8000]
	}

	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	return embedding, nil
}

// FindSimilarProjects returns up to topK stored projects whose embeddings
// are at least minSimilarity close to the query project's.
func (s *EmbeddingsService) FindSimilarProjects(ctx context.Context, project *models.Project, topK int, minSimilarity float64) ([]models.SimilarProject, error) {
	if s.searcher == nil {
		return nil, fmt.Errorf("no vector store configured")
	}
	if topK <= 0 {
		topK = 10
	}

	embedding := project.Embedding
	if len(embedding) == 0 {
		generated, err := s.EmbedProject(ctx, project)
		if err != nil {
			return nil, err
		}
		embedding = generated
	}

	hits, err := s.searcher.SearchSimilarProjects(ctx, embedding, project.ID, topK)
	if err != nil {
		return nil, err
	}

	filtered := hits[:0]
	for _, hit := range hits {
		if hit.Similarity >= minSimilarity {
			filtered = append(filtered, hit)
		}
	}
	return filtered, nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched or zero-magnitude inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
