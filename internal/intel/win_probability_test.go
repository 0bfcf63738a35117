package intel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/david/project-radar/internal/models"
)

func TestPredictUntrainedIsNeutral(t *testing.T) {
	model := NewWinProbabilityModel()

	if model.Trained() {
		t.Fatal("new model should not report trained")
	}

	// The untrained prediction is exactly 0.5, not approximately.
	cases := []WinFeatures{
		{},
		{ProjectValue: 500_000_000, CompetitionLevel: 1.0},
		{HistoricalWinRate: 0.9, PastProjects: 40, SectorExperience: 12},
	}
	for _, f := range cases {
		if got := model.Predict(f); got != 0.5 {
			t.Errorf("untrained Predict(%+v) = %v, want exactly 0.5", f, got)
		}
	}

	if imp := model.FeatureImportance(); len(imp) != 0 {
		t.Errorf("untrained importance should be empty, got %v", imp)
	}
}

func TestTrainValidation(t *testing.T) {
	model := NewWinProbabilityModel()

	if err := model.Train(nil, nil); !errors.Is(err, ErrBadTrainingData) {
		t.Errorf("empty training set: err = %v, want ErrBadTrainingData", err)
	}
	err := model.Train([]WinFeatures{{}, {}}, []bool{true})
	if !errors.Is(err, ErrBadTrainingData) {
		t.Errorf("mismatched lengths: err = %v, want ErrBadTrainingData", err)
	}
	if model.Trained() {
		t.Error("failed training must not mark the model trained")
	}
}

func TestTrainSeparableOutcomes(t *testing.T) {
	model := NewWinProbabilityModel()

	// Strong win rate wins, weak win rate loses.
	var features []WinFeatures
	var outcomes []bool
	for i := 0; i < 10; i++ {
		features = append(features, WinFeatures{HistoricalWinRate: 0.9, PastProjects: 30})
		outcomes = append(outcomes, true)
		features = append(features, WinFeatures{HistoricalWinRate: 0.1, PastProjects: 2})
		outcomes = append(outcomes, false)
	}

	if err := model.Train(features, outcomes); err != nil {
		t.Fatal(err)
	}
	if !model.Trained() {
		t.Fatal("model should report trained")
	}

	strong := model.Predict(WinFeatures{HistoricalWinRate: 0.9, PastProjects: 30})
	weak := model.Predict(WinFeatures{HistoricalWinRate: 0.1, PastProjects: 2})
	if strong <= weak {
		t.Errorf("strong bidder %v should outscore weak bidder %v", strong, weak)
	}
	if strong <= 0.5 {
		t.Errorf("strong bidder probability = %v, want above 0.5", strong)
	}
	if weak >= 0.5 {
		t.Errorf("weak bidder probability = %v, want below 0.5", weak)
	}

	importance := model.FeatureImportance()
	if len(importance) != len(WinFeatureNames) {
		t.Fatalf("importance has %d entries, want %d", len(importance), len(WinFeatureNames))
	}
	for name, weight := range importance {
		if weight < 0 {
			t.Errorf("importance[%s] = %v, magnitudes must be non-negative", name, weight)
		}
	}
}

func TestBuildWinFeaturesDefaults(t *testing.T) {
	project := &models.Project{ID: uuid.New()}
	company := &models.Company{ID: uuid.New()}

	features, err := BuildWinFeatures(context.Background(), nil, project, company)
	if err != nil {
		t.Fatal(err)
	}
	if features.HistoricalWinRate != 0.5 {
		t.Errorf("win rate default = %v, want 0.5", features.HistoricalWinRate)
	}
	if features.CompetitionLevel != 0.5 {
		t.Errorf("competition default = %v, want 0.5", features.CompetitionLevel)
	}
}

func TestBuildWinFeaturesNilCompany(t *testing.T) {
	reader := &fakeReader{typeCount: 7, participantCount: 4}
	project := &models.Project{ID: uuid.New(), ProjectType: models.TypeCommercial, EstimatedValue: floatPtr(10_000_000)}

	features, err := BuildWinFeatures(context.Background(), reader, project, nil)
	if err != nil {
		t.Fatal(err)
	}
	if features.HistoricalWinRate != 0.5 {
		t.Errorf("win rate = %v, want the 0.5 neutral default", features.HistoricalWinRate)
	}
	if features.PastProjects != 0 || features.SectorExperience != 0 {
		t.Errorf("history counts = %v/%v, want zero without a company",
			features.PastProjects, features.SectorExperience)
	}
	// Competition comes from the project, not the company.
	if features.CompetitionLevel != 0.4 {
		t.Errorf("competition = %v, want 0.4 for 4 participants", features.CompetitionLevel)
	}
}

func TestBuildWinFeaturesFromReader(t *testing.T) {
	won, lost := true, false
	reader := &fakeReader{
		typeCount:        7,
		participantCount: 4,
		participations: []models.ProjectParticipant{
			{Won: &won},
			{Won: &won},
			{Won: &lost},
			{Won: nil},
		},
	}

	project := &models.Project{ID: uuid.New(), ProjectType: models.TypeCommercial, EstimatedValue: floatPtr(10_000_000)}
	company := &models.Company{ID: uuid.New(), TotalProjects: 20}

	features, err := BuildWinFeatures(context.Background(), reader, project, company)
	if err != nil {
		t.Fatal(err)
	}
	if features.ProjectValue != 10_000_000 {
		t.Errorf("project value = %v", features.ProjectValue)
	}
	// Two wins out of three decided outcomes; the undecided row is ignored.
	if features.HistoricalWinRate != 2.0/3.0 {
		t.Errorf("win rate = %v, want 2/3", features.HistoricalWinRate)
	}
	if features.SectorExperience != 7 {
		t.Errorf("sector experience = %v, want 7", features.SectorExperience)
	}
	if features.CompetitionLevel != 0.4 {
		t.Errorf("competition = %v, want 0.4 for 4 participants", features.CompetitionLevel)
	}
}

func TestBuildWinFeaturesRejectsNegativeValue(t *testing.T) {
	project := &models.Project{ID: uuid.New(), EstimatedValue: floatPtr(-1)}
	company := &models.Company{ID: uuid.New()}

	_, err := BuildWinFeatures(context.Background(), nil, project, company)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}
