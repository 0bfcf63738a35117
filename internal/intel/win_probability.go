package intel

import (
	"fmt"
	"math"
)

// WinFeatureNames labels the fixed feature vector, in order.
var WinFeatureNames = [5]string{
	"project_value",
	"historical_win_rate",
	"past_projects",
	"sector_experience",
	"competition_level",
}

// WinFeatures is the fixed 5-dimension input to the win-probability model.
// Each field is pre-normalized by prepare() before training or prediction.
type WinFeatures struct {
	ProjectValue      float64 // raw currency amount
	HistoricalWinRate float64 // [0,1]
	PastProjects      float64 // count
	SectorExperience  float64 // count of same-type projects
	CompetitionLevel  float64 // [0,1]
}

func (f WinFeatures) prepare() [5]float64 {
	return [5]float64{
		f.ProjectValue / 1_000_000,
		f.HistoricalWinRate,
		f.PastProjects / 10,
		f.SectorExperience,
		f.CompetitionLevel,
	}
}

// WinProbabilityModel predicts the probability of winning a bid from the
// fixed feature vector. Until Train has been called it predicts exactly 0.5
// — a deliberate neutral prior that lets callers distinguish "no signal"
// from a confident 50%. Train fully replaces the fitted state; concurrent
// predictions during training are undefined unless externally serialized.
//
// The underlying model is L2-regularized logistic regression fit by batch
// gradient descent, which keeps predictions calibrated probabilities.
type WinProbabilityModel struct {
	fitted *logisticModel
}

type logisticModel struct {
	weights [5]float64
	bias    float64
}

func NewWinProbabilityModel() *WinProbabilityModel {
	return &WinProbabilityModel{}
}

// Trained reports whether the model has been fit.
func (m *WinProbabilityModel) Trained() bool {
	return m.fitted != nil
}

// Train fits the model on historical bid outcomes. Feature and label
// slices must be non-empty and the same length.
func (m *WinProbabilityModel) Train(features []WinFeatures, won []bool) error {
	if len(features) == 0 {
		return fmt.Errorf("%w: empty training set", ErrBadTrainingData)
	}
	if len(features) != len(won) {
		return fmt.Errorf("%w: %d feature vectors but %d labels", ErrBadTrainingData, len(features), len(won))
	}

	rows := make([][5]float64, len(features))
	labels := make([]float64, len(won))
	for i, f := range features {
		rows[i] = f.prepare()
		if won[i] {
			labels[i] = 1
		}
	}

	m.fitted = fitLogistic(rows, labels)
	return nil
}

// Predict returns the win probability for one feature vector.
func (m *WinProbabilityModel) Predict(features WinFeatures) float64 {
	fitted := m.fitted
	if fitted == nil {
		return 0.5
	}
	return fitted.probability(features.prepare())
}

// FeatureImportance returns one weight magnitude per input feature. The
// values are absolute regression weights, not normalized shares. Empty map
// when untrained.
func (m *WinProbabilityModel) FeatureImportance() map[string]float64 {
	fitted := m.fitted
	if fitted == nil {
		return map[string]float64{}
	}

	importance := make(map[string]float64, len(WinFeatureNames))
	for i, name := range WinFeatureNames {
		importance[name] = math.Abs(fitted.weights[i])
	}
	return importance
}

const (
	logisticEpochs       = 500
	logisticLearningRate = 0.1
	logisticL2           = 0.001
)

func fitLogistic(rows [][5]float64, labels []float64) *logisticModel {
	model := &logisticModel{}
	n := float64(len(rows))

	for epoch := 0; epoch < logisticEpochs; epoch++ {
		var gradW [5]float64
		var gradB float64

		for i, row := range rows {
			err := model.probability(row) - labels[i]
			for j := range row {
				gradW[j] += err * row[j]
			}
			gradB += err
		}

		for j := range model.weights {
			model.weights[j] -= logisticLearningRate * (gradW[j]/n + logisticL2*model.weights[j])
		}
		model.bias -= logisticLearningRate * gradB / n
	}

	return model
}

func (lm *logisticModel) probability(row [5]float64) float64 {
	z := lm.bias
	for j, x := range row {
		z += lm.weights[j] * x
	}
	return 1 / (1 + math.Exp(-z))
}
