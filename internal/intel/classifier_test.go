package intel

import (
	"context"
	"testing"

	"github.com/david/project-radar/internal/models"
)

func TestClassifyByRules(t *testing.T) {
	classifier := NewProjectClassifier(DefaultScoringConfig(), nil)
	ctx := context.Background()

	cases := []struct {
		name      string
		title     string
		desc      string
		wantType  models.ProjectType
		wantStage models.ProjectStage
	}{
		{
			name:      "healthcare tender",
			title:     "New hospital wing",
			desc:      "Medical surgery center, invitation to bid issued",
			wantType:  models.TypeHealthcare,
			wantStage: models.StageTender,
		},
		{
			name:      "residential permit",
			title:     "Apartment complex",
			desc:      "240-unit multifamily housing, permit application under review",
			wantType:  models.TypeResidential,
			wantStage: models.StagePermit,
		},
		{
			name:      "infrastructure construction",
			title:     "Highway bridge replacement",
			desc:      "Bridge over the river, under construction, foundation complete",
			wantType:  models.TypeInfrastructure,
			wantStage: models.StageConstruction,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := classifier.Classify(ctx, tc.title, tc.desc, false)
			if result.ProjectType != tc.wantType {
				t.Errorf("type = %s, want %s", result.ProjectType, tc.wantType)
			}
			if result.Stage != tc.wantStage {
				t.Errorf("stage = %s, want %s", result.Stage, tc.wantStage)
			}
			if result.Method != "rules" {
				t.Errorf("method = %s, want rules", result.Method)
			}
		})
	}
}

func TestClassifyEmptyText(t *testing.T) {
	classifier := NewProjectClassifier(DefaultScoringConfig(), nil)

	result := classifier.Classify(context.Background(), "", "", false)
	if result.ProjectType != models.TypeOther {
		t.Errorf("type = %s, want other", result.ProjectType)
	}
	if result.Stage != models.StagePlanning {
		t.Errorf("stage = %s, want planning", result.Stage)
	}
	if result.Confidence != 0.3 {
		t.Errorf("confidence = %v, want the 0.3 fallback", result.Confidence)
	}
}

func TestClassifyConfidenceGrowsWithHits(t *testing.T) {
	cfg := DefaultScoringConfig()

	_, oneHit := classifyTypeByKeywords("a warehouse project", cfg)
	_, threeHits := classifyTypeByKeywords("warehouse manufacturing factory expansion", cfg)

	if threeHits <= oneHit {
		t.Errorf("confidence should grow with keyword hits: %v vs %v", oneHit, threeHits)
	}
	if threeHits != 1.0 {
		t.Errorf("three hits should saturate at 1.0, got %v", threeHits)
	}
}

func TestClassifierTrainedModelPath(t *testing.T) {
	classifier := NewProjectClassifier(DefaultScoringConfig(), nil)

	samples := []TrainingSample{
		{Text: "office tower downtown retail podium", ProjectType: "commercial", Stage: "bidding"},
		{Text: "retail mall expansion office space", ProjectType: "commercial", Stage: "bidding"},
		{Text: "apartment housing development units", ProjectType: "residential", Stage: "planning"},
		{Text: "multifamily housing condo homes", ProjectType: "residential", Stage: "planning"},
		{Text: "warehouse distribution facility docks", ProjectType: "industrial", Stage: "construction"},
		{Text: "factory manufacturing plant floor", ProjectType: "industrial", Stage: "construction"},
	}
	report, err := classifier.Train(samples)
	if err != nil {
		t.Fatal(err)
	}
	if report.Samples != len(samples) {
		t.Errorf("report samples = %d, want %d", report.Samples, len(samples))
	}
	if !classifier.Trained() {
		t.Fatal("classifier should report trained")
	}

	// On text nearly identical to training data the model path should win
	// with high confidence.
	result := classifier.Classify(context.Background(), "warehouse distribution facility", "manufacturing plant floor", false)
	if result.Method != "model" {
		t.Fatalf("method = %s, want model (confidence %v)", result.Method, result.Confidence)
	}
	if result.ProjectType != models.TypeIndustrial {
		t.Errorf("type = %s, want industrial", result.ProjectType)
	}
}

func TestTrainRejectsBadSamples(t *testing.T) {
	classifier := NewProjectClassifier(DefaultScoringConfig(), nil)

	cases := []struct {
		name    string
		samples []TrainingSample
	}{
		{"empty", nil},
		{"unknown type", []TrainingSample{{Text: "x", ProjectType: "spaceport", Stage: "planning"}}},
		{"unknown stage", []TrainingSample{{Text: "x", ProjectType: "commercial", Stage: "demolished"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := classifier.Train(tc.samples); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEstimateSizeCategory(t *testing.T) {
	cases := []struct {
		text string
		want models.SizeCategory
	}{
		{"a 30,000 sf retail building", models.SizeSmall},
		{"120,000 square feet of office space", models.SizeMedium},
		{"a 600,000 sq ft distribution center", models.SizeLarge},
		{"2,500,000 sf hyperscale campus", models.SizeMega},
		{"$3 million renovation", models.SizeSmall},
		{"a $25 million project", models.SizeMedium},
		{"the $120 million tower", models.SizeLarge},
		{"a $1.2 billion program", models.SizeMega},
		{"no figures mentioned here", models.SizeUnknown},
	}

	for _, tc := range cases {
		if got := EstimateSizeCategory(tc.text); got != tc.want {
			t.Errorf("EstimateSizeCategory(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}
