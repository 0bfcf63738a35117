package intel

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/david/project-radar/internal/models"
)

// fakeReader returns canned counts so scoring paths can be exercised
// without a database.
type fakeReader struct {
	typeCount        int
	regionCount      int
	participantCount int
	comparables      []int
	participations   []models.ProjectParticipant
}

func (f *fakeReader) GetProject(context.Context, uuid.UUID) (*models.Project, error) {
	return nil, ErrNotFound
}

func (f *fakeReader) GetCompany(context.Context, uuid.UUID) (*models.Company, error) {
	return nil, ErrNotFound
}

func (f *fakeReader) CountParticipationsByType(context.Context, uuid.UUID, models.ProjectType) (int, error) {
	return f.typeCount, nil
}

func (f *fakeReader) CountParticipationsByRegion(context.Context, uuid.UUID, string) (int, error) {
	return f.regionCount, nil
}

func (f *fakeReader) ParticipantCount(context.Context, uuid.UUID) (int, error) {
	return f.participantCount, nil
}

func (f *fakeReader) ComparableParticipantCounts(context.Context, models.ProjectType, string, models.ProjectStage, uuid.UUID, int) ([]int, error) {
	return f.comparables, nil
}

func (f *fakeReader) CompanyParticipations(context.Context, uuid.UUID) ([]models.ProjectParticipant, error) {
	return f.participations, nil
}

func floatPtr(v float64) *float64 { return &v }

func fixedNow() time.Time {
	return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newTestScorer(reader ProjectReader, winModel *WinProbabilityModel) *OpportunityScorer {
	s := NewOpportunityScorer(DefaultScoringConfig(), reader, winModel)
	s.now = fixedNow
	return s
}

func strongFitCompany() *models.Company {
	return &models.Company{
		ID:                  uuid.New(),
		Name:                "Granite Builders",
		CompanyType:         models.CompanyGeneralContractor,
		Specialties:         []string{"commercial"},
		HeadquartersCountry: "US",
		HeadquartersRegion:  "Texas",
		AverageProjectSize:  floatPtr(50_000_000),
		TotalProjects:       100,
		WinRate:             floatPtr(0.6),
	}
}

func attractiveProject() *models.Project {
	deadline := fixedNow().Add(20 * 24 * time.Hour)
	start := fixedNow().Add(90 * 24 * time.Hour)
	return &models.Project{
		ID:             uuid.New(),
		Title:          "Downtown office tower",
		Description:    "30-story office development",
		ProjectType:    models.TypeCommercial,
		Stage:          models.StageBidding,
		EstimatedValue: floatPtr(75_000_000),
		Address:        "500 Main St",
		Region:         "Texas",
		Country:        "US",
		StartDate:      &start,
		BidDeadline:    &deadline,
		Source:         models.SourceTender,
		IsVerified:     true,
	}
}

func TestScoreAttractiveOpportunity(t *testing.T) {
	reader := &fakeReader{participantCount: 2}
	scorer := newTestScorer(reader, nil)

	result, err := scorer.Score(context.Background(), attractiveProject(), strongFitCompany(), false)
	if err != nil {
		t.Fatal(err)
	}

	if result.Category != models.ScoreHigh {
		t.Errorf("category = %s, want high (overall %.3f)", result.Category, result.OverallScore)
	}
	if result.Recommendation != models.RecommendPursue {
		t.Errorf("recommendation = %s, want pursue", result.Recommendation)
	}
	if result.Scores.Fit != 1.0 {
		t.Errorf("fit = %v, want 1.0", result.Scores.Fit)
	}
	if result.Scores.Timing != 1.0 {
		t.Errorf("timing = %v, want 1.0 for a 20-day deadline", result.Scores.Timing)
	}
	if result.Scores.Competition != 1.0 {
		t.Errorf("competition = %v, want 1.0 with 2 known participants", result.Scores.Competition)
	}
	if result.WinProbability != nil {
		t.Error("win probability should be absent when not requested")
	}
}

func TestScoreSparseProject(t *testing.T) {
	scorer := newTestScorer(nil, nil)

	project := &models.Project{
		ID:     uuid.New(),
		Title:  "Unnamed development",
		Stage:  models.StagePlanning,
		Source: models.SourceWebScrape,
	}

	result, err := scorer.Score(context.Background(), project, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	if result.Category == models.ScoreHigh {
		t.Errorf("sparse planning-stage scrape should not score high, got %.3f", result.OverallScore)
	}
	if result.Scores.Size != 0.5 {
		t.Errorf("size = %v, want 0.5 default without a value", result.Scores.Size)
	}
	if result.Scores.Timing != 0.5 {
		t.Errorf("timing = %v, want 0.5 default without dates", result.Scores.Timing)
	}
}

func TestScoreOverallIsWeightedSum(t *testing.T) {
	reader := &fakeReader{participantCount: 2}
	scorer := newTestScorer(reader, nil)
	cfg := scorer.cfg

	result, err := scorer.Score(context.Background(), attractiveProject(), strongFitCompany(), false)
	if err != nil {
		t.Fatal(err)
	}

	want := cfg.WeightFit*result.Scores.Fit +
		cfg.WeightLikelihood*result.Scores.Likelihood +
		cfg.WeightSize*result.Scores.Size +
		cfg.WeightTiming*result.Scores.Timing +
		cfg.WeightCompetition*result.Scores.Competition
	if math.Abs(result.OverallScore-want) > 1e-9 {
		t.Errorf("overall = %v, want weighted sum %v", result.OverallScore, want)
	}
}

func TestScoreRejectsInvalidInput(t *testing.T) {
	scorer := newTestScorer(nil, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		project *models.Project
	}{
		{"nil project", nil},
		{"negative value", &models.Project{EstimatedValue: floatPtr(-5)}},
		{"unknown type", &models.Project{ProjectType: "spaceport"}},
		{"unknown stage", &models.Project{Stage: "demolished"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := scorer.Score(ctx, tc.project, nil, false)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestScoreTimingBands(t *testing.T) {
	scorer := newTestScorer(nil, nil)

	deadline := func(days int) *models.Project {
		d := fixedNow().Add(time.Duration(days) * 24 * time.Hour)
		return &models.Project{BidDeadline: &d}
	}

	cases := []struct {
		days int
		want float64
	}{
		{-5, 0.0},
		{3, 0.3},
		{20, 1.0},
		{60, 0.8},
		{120, 0.6},
		{300, 0.4},
	}
	for _, tc := range cases {
		if got := scorer.scoreTiming(deadline(tc.days)); got != tc.want {
			t.Errorf("scoreTiming(%d days) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestScoreCompetitionComparablesFallback(t *testing.T) {
	// No direct participant data; comparable projects average 4 bidders.
	reader := &fakeReader{comparables: []int{2, 4, 6}}
	scorer := newTestScorer(reader, nil)

	got := scorer.scoreCompetition(context.Background(), &models.Project{ID: uuid.New()})
	want := 1.0 - 4.0/10
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("competition = %v, want %v", got, want)
	}
}

func TestScoreCompetitionValueAdjustment(t *testing.T) {
	scorer := newTestScorer(nil, nil)

	small := &models.Project{EstimatedValue: floatPtr(2_000_000)}
	if got := scorer.scoreCompetition(context.Background(), small); math.Abs(got-0.72) > 1e-9 {
		t.Errorf("small project competition = %v, want 0.72", got)
	}

	mega := &models.Project{EstimatedValue: floatPtr(200_000_000)}
	if got := scorer.scoreCompetition(context.Background(), mega); math.Abs(got-0.42) > 1e-9 {
		t.Errorf("mega project competition = %v, want 0.42", got)
	}
}

func TestScoreBatchRanksDescending(t *testing.T) {
	reader := &fakeReader{participantCount: 2}
	scorer := newTestScorer(reader, nil)

	weak := &models.Project{
		ID:     uuid.New(),
		Title:  "Weak",
		Stage:  models.StagePlanning,
		Source: models.SourceWebScrape,
	}
	strong := attractiveProject()
	strong.Title = "Strong"

	results, err := scorer.ScoreBatch(context.Background(), []*models.Project{weak, strong}, strongFitCompany())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ProjectTitle != "Strong" {
		t.Errorf("first ranked = %s, want Strong", results[0].ProjectTitle)
	}
	if results[0].OverallScore < results[1].OverallScore {
		t.Error("results not sorted descending")
	}
	if results[0].WinProbability != nil || results[1].WinProbability != nil {
		t.Error("batch scoring must not compute win probabilities")
	}
}

func TestScoreWinProbabilityOverride(t *testing.T) {
	// A model trained on all-lost outcomes predicts far below the pass
	// threshold, forcing the recommendation to pass while the category
	// stays high. The disagreement is intentional and reported as-is.
	winModel := NewWinProbabilityModel()
	features := make([]WinFeatures, 6)
	outcomes := make([]bool, 6)
	if err := winModel.Train(features, outcomes); err != nil {
		t.Fatal(err)
	}

	reader := &fakeReader{participantCount: 2}
	scorer := newTestScorer(reader, winModel)

	result, err := scorer.Score(context.Background(), attractiveProject(), strongFitCompany(), true)
	if err != nil {
		t.Fatal(err)
	}

	if result.WinProbability == nil {
		t.Fatal("expected win probability")
	}
	if *result.WinProbability >= 0.3 {
		t.Fatalf("win probability = %v, expected below 0.3 after all-lost training", *result.WinProbability)
	}
	if result.Category != models.ScoreHigh {
		t.Errorf("category = %s, want high", result.Category)
	}
	if result.Recommendation != models.RecommendPass {
		t.Errorf("recommendation = %s, want pass under the override", result.Recommendation)
	}
}

func TestScoreNilCompanyWithTrainedWinModel(t *testing.T) {
	winModel := NewWinProbabilityModel()
	features := make([]WinFeatures, 6)
	outcomes := make([]bool, 6)
	if err := winModel.Train(features, outcomes); err != nil {
		t.Fatal(err)
	}

	reader := &fakeReader{participantCount: 2}
	scorer := newTestScorer(reader, winModel)

	// No company record must degrade to neutral defaults, not fail.
	result, err := scorer.Score(context.Background(), attractiveProject(), nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if result.WinProbability == nil {
		t.Fatal("expected a win probability without a company")
	}
	if result.Scores.Fit != 0.5 {
		t.Errorf("fit = %v, want 0.5 default without a company", result.Scores.Fit)
	}
}

func TestBuildReasoningMentionsCompany(t *testing.T) {
	sub := models.SubScores{Fit: 0.9, Likelihood: 0.8, Size: 0.8, Timing: 0.9, Competition: 0.8}
	reasoning := buildReasoning(strongFitCompany(), sub, nil)

	if len(reasoning.Strengths) == 0 {
		t.Fatal("expected strengths for uniformly high sub-scores")
	}
	if reasoning.Strengths[0] != "Strong fit with Granite Builders's capabilities" {
		t.Errorf("unexpected first strength: %q", reasoning.Strengths[0])
	}
	if len(reasoning.Concerns) != 0 {
		t.Errorf("unexpected concerns: %v", reasoning.Concerns)
	}
	if reasoning.KeyFactors["timing"] != "urgent" {
		t.Errorf("timing factor = %q, want urgent", reasoning.KeyFactors["timing"])
	}
}
