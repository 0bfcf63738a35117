package intel

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/david/project-radar/internal/models"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"mismatched lengths", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestProjectText(t *testing.T) {
	project := &models.Project{
		Title:          "Riverside apartments",
		Description:    strings.Repeat("x", 2000),
		ProjectType:    models.TypeResidential,
		Region:         "Oregon",
		Country:        "US",
		EstimatedValue: floatPtr(42_000_000),
	}

	text := ProjectText(project)
	if !strings.HasPrefix(text, "Riverside apartments | ") {
		t.Errorf("text should start with the title: %q", text[:40])
	}
	if strings.Contains(text, strings.Repeat("x", 1001)) {
		t.Error("description should be truncated to 1000 characters")
	}
	if !strings.Contains(text, "Type: residential") {
		t.Error("text should carry the project type")
	}
	if !strings.Contains(text, "Location: Oregon, US") {
		t.Error("text should carry the location")
	}
	if !strings.Contains(text, "Value: $42000000") {
		t.Error("text should carry the value")
	}
}

type fakeEmbedder struct {
	vec  []float32
	seen string
}

func (f *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.seen = text
	return f.vec, nil
}

type fakeSearcher struct {
	hits []models.SimilarProject
	got  []float32
}

func (f *fakeSearcher) SearchSimilarProjects(_ context.Context, embedding []float32, _ uuid.UUID, _ int) ([]models.SimilarProject, error) {
	f.got = embedding
	return f.hits, nil
}

func TestFindSimilarProjectsFiltersByThreshold(t *testing.T) {
	searcher := &fakeSearcher{hits: []models.SimilarProject{
		{Title: "close", Similarity: 0.9},
		{Title: "middling", Similarity: 0.65},
		{Title: "far", Similarity: 0.2},
	}}
	service := NewEmbeddingsService(&fakeEmbedder{vec: []float32{1, 2}}, searcher)

	project := &models.Project{ID: uuid.New(), Title: "query"}
	results, err := service.FindSimilarProjects(context.Background(), project, 10, 0.6)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 above the threshold", len(results))
	}
	if results[0].Title != "close" || results[1].Title != "middling" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestFindSimilarProjectsUsesStoredEmbedding(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{9, 9}}
	searcher := &fakeSearcher{}
	service := NewEmbeddingsService(embedder, searcher)

	project := &models.Project{
		ID:        uuid.New(),
		Title:     "already embedded",
		Embedding: []float32{1, 2, 3},
	}
	if _, err := service.FindSimilarProjects(context.Background(), project, 5, 0); err != nil {
		t.Fatal(err)
	}
	if embedder.seen != "" {
		t.Error("embedder should not be called when a stored embedding exists")
	}
	if len(searcher.got) != 3 || searcher.got[0] != 1 {
		t.Errorf("searcher received %v, want the stored embedding", searcher.got)
	}
}

func TestEmbedTextTruncates(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1}}
	service := NewEmbeddingsService(embedder, nil)

	if _, err := service.EmbedText(context.Background(), strings.Repeat("a", 9000)); err != nil {
		t.Fatal(err)
	}
	if len(embedder.seen) != 8000 {
		t.Errorf("embedder received %d characters, want 8000", len(embedder.seen))
	}
}
