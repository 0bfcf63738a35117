package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/david/project-radar/internal/models"
)

type fakeClassifier struct {
	result models.ClassificationResult
	calls  int
}

func (f *fakeClassifier) Classify(context.Context, string, string, bool) *models.ClassificationResult {
	f.calls++
	r := f.result
	return &r
}

func testSource() *SourceConfig {
	return &SourceConfig{
		ID:      "test_permits",
		Kind:    "permit",
		Region:  "Texas",
		Country: "US",
	}
}

func TestNormalize(t *testing.T) {
	classifier := &fakeClassifier{result: models.ClassificationResult{
		ProjectType: models.TypeCommercial,
		Stage:       models.StagePermit,
		Confidence:  0.8,
		Method:      "rules",
	}}
	p := NewPipeline(nil, nil, classifier, nil)

	page := RawPage{
		URL:   "https://permits.example.com/item/42",
		Title: "  Office   renovation ",
		Content: `<p>A $12 million office renovation in Austin, TX.</p>
			<p>Bids due 2031-06-01.</p>`,
		Source: testSource(),
	}

	project, err := p.Normalize(context.Background(), page)
	if err != nil {
		t.Fatal(err)
	}

	if project.Title != "Office renovation" {
		t.Errorf("title = %q", project.Title)
	}
	if project.Source != models.SourcePermit {
		t.Errorf("source = %s, want permit", project.Source)
	}
	if project.Region != "Texas" || project.Country != "US" {
		t.Errorf("location = %s/%s", project.Region, project.Country)
	}
	if project.ProjectType != models.TypeCommercial || project.Stage != models.StagePermit {
		t.Errorf("classification = %s/%s", project.ProjectType, project.Stage)
	}
	if project.EstimatedValue == nil || *project.EstimatedValue != 12_000_000 {
		t.Errorf("estimated value = %v, want 12000000", project.EstimatedValue)
	}
	if project.BidDeadline == nil {
		t.Error("expected a bid deadline from the content")
	}
	if project.Address != "Austin, TX" {
		t.Errorf("address = %q, want the extracted location", project.Address)
	}
	if classifier.calls != 1 {
		t.Errorf("classifier called %d times, want 1", classifier.calls)
	}
}

func TestNormalizeTenderPDFIsBestEffort(t *testing.T) {
	// The linked document is not a parseable PDF; the listing still yields
	// a project and the document merge is skipped.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a pdf"))
	}))
	defer srv.Close()

	classifier := &fakeClassifier{result: models.ClassificationResult{
		ProjectType: models.TypeInfrastructure,
		Stage:       models.StageBidding,
	}}
	p := NewPipeline(nil, nil, classifier, nil)
	p.PDFClient = srv.Client()

	source := testSource()
	source.Kind = "tender"

	project, err := p.Normalize(context.Background(), RawPage{
		URL:     srv.URL + "/notice.pdf",
		Title:   "Bridge rehabilitation tender",
		Content: "<p>Sealed bids invited.</p>",
		Source:  source,
	})
	if err != nil {
		t.Fatal(err)
	}
	if project.Source != models.SourceTender {
		t.Errorf("source = %s, want tender", project.Source)
	}
	if project.BidDeadline != nil || project.EstimatedValue != nil {
		t.Error("an unreadable document must not invent a deadline or value")
	}
}

func TestNormalizeRejectsUntitledPages(t *testing.T) {
	p := NewPipeline(nil, nil, &fakeClassifier{}, nil)

	_, err := p.Normalize(context.Background(), RawPage{
		URL:    "https://example.com/x",
		Source: testSource(),
	})
	if err == nil {
		t.Error("expected an error for a page without a title")
	}
}

func TestProjectIDIsStable(t *testing.T) {
	page := RawPage{URL: "https://permits.example.com/item/42", Source: testSource()}

	first := projectID(page)
	second := projectID(page)
	if first != second {
		t.Error("same URL must produce the same project id")
	}

	other := projectID(RawPage{URL: "https://permits.example.com/item/43", Source: testSource()})
	if other == first {
		t.Error("different URLs must produce different project ids")
	}
}

func TestSourceKind(t *testing.T) {
	cases := []struct {
		kind string
		want models.ProjectSource
	}{
		{"permit", models.SourcePermit},
		{"tender", models.SourceTender},
		{"news", models.SourceNews},
		{"anything else", models.SourceWebScrape},
	}
	for _, tc := range cases {
		if got := sourceKind(tc.kind); got != tc.want {
			t.Errorf("sourceKind(%q) = %s, want %s", tc.kind, got, tc.want)
		}
	}
}

func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if len(registry.Sources) == 0 {
		t.Fatal("embedded registry should define sources")
	}
	for _, src := range registry.Sources {
		if src.ID == "" {
			t.Error("source without an id")
		}
	}

	if _, ok := registry.Get(registry.Sources[0].ID); !ok {
		t.Error("Get should find a registered source")
	}
	if _, ok := registry.Get("nope"); ok {
		t.Error("Get should miss unknown ids")
	}
}
