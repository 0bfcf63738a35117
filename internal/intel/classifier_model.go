package intel

import (
	"fmt"
	"math"
	"strings"

	"github.com/david/project-radar/internal/models"
)

// TrainingSample is one labeled document for classifier training.
type TrainingSample struct {
	Text        string `json:"text"`
	ProjectType string `json:"project_type"`
	Stage       string `json:"stage"`
}

// TrainReport summarizes a classifier training run.
type TrainReport struct {
	Samples       int     `json:"n_samples"`
	TypeAccuracy  float64 `json:"type_accuracy"`
	StageAccuracy float64 `json:"stage_accuracy"`
}

// textModel is the trained classification state: one naive Bayes model for
// project type and one for stage, sharing tokenization.
type textModel struct {
	typeModel  *naiveBayes
	stageModel *naiveBayes
}

// Train fits fresh type and stage models and swaps them in atomically (a
// single pointer store; in-flight classifications keep using the model they
// started with). Returns ErrBadTrainingData for an empty set or labels
// outside the known enums.
func (c *ProjectClassifier) Train(samples []TrainingSample) (*TrainReport, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: empty training set", ErrBadTrainingData)
	}

	texts := make([]string, len(samples))
	typeLabels := make([]string, len(samples))
	stageLabels := make([]string, len(samples))
	for i, s := range samples {
		if !models.ValidProjectType(s.ProjectType) {
			return nil, fmt.Errorf("%w: unknown project type %q", ErrBadTrainingData, s.ProjectType)
		}
		if !models.ValidProjectStage(s.Stage) {
			return nil, fmt.Errorf("%w: unknown stage %q", ErrBadTrainingData, s.Stage)
		}
		texts[i] = s.Text
		typeLabels[i] = s.ProjectType
		stageLabels[i] = s.Stage
	}

	model := &textModel{
		typeModel:  fitNaiveBayes(texts, typeLabels),
		stageModel: fitNaiveBayes(texts, stageLabels),
	}

	report := &TrainReport{
		Samples:       len(samples),
		TypeAccuracy:  trainingAccuracy(model.typeModel, texts, typeLabels),
		StageAccuracy: trainingAccuracy(model.stageModel, texts, stageLabels),
	}

	c.model = model
	return report, nil
}

// Trained reports whether a text model is available.
func (c *ProjectClassifier) Trained() bool {
	return c.model != nil
}

// naiveBayes is a multinomial naive Bayes text classifier with Laplace
// smoothing. Its normalized posterior doubles as the confidence value.
type naiveBayes struct {
	classes     []string
	logPrior    map[string]float64
	tokenCounts map[string]map[string]float64
	totalTokens map[string]float64
	vocabSize   float64
}

func fitNaiveBayes(texts, labels []string) *naiveBayes {
	nb := &naiveBayes{
		logPrior:    make(map[string]float64),
		tokenCounts: make(map[string]map[string]float64),
		totalTokens: make(map[string]float64),
	}

	classCounts := make(map[string]int)
	vocab := make(map[string]struct{})

	for i, text := range texts {
		label := labels[i]
		if _, seen := classCounts[label]; !seen {
			nb.classes = append(nb.classes, label)
			nb.tokenCounts[label] = make(map[string]float64)
		}
		classCounts[label]++

		for _, token := range tokenize(text) {
			vocab[token] = struct{}{}
			nb.tokenCounts[label][token]++
			nb.totalTokens[label]++
		}
	}

	total := float64(len(texts))
	for _, class := range nb.classes {
		nb.logPrior[class] = math.Log(float64(classCounts[class]) / total)
	}
	nb.vocabSize = float64(len(vocab))

	return nb
}

// predict returns the argmax class and its normalized posterior.
func (nb *naiveBayes) predict(text string) (string, float64) {
	tokens := tokenize(text)

	logScores := make([]float64, len(nb.classes))
	for i, class := range nb.classes {
		score := nb.logPrior[class]
		for _, token := range tokens {
			count := nb.tokenCounts[class][token]
			score += math.Log((count + 1) / (nb.totalTokens[class] + nb.vocabSize))
		}
		logScores[i] = score
	}

	// Softmax in log space for a stable posterior.
	maxLog := logScores[0]
	for _, s := range logScores[1:] {
		if s > maxLog {
			maxLog = s
		}
	}
	var sum float64
	probs := make([]float64, len(logScores))
	for i, s := range logScores {
		probs[i] = math.Exp(s - maxLog)
		sum += probs[i]
	}

	bestIdx := 0
	for i := range probs {
		probs[i] /= sum
		if probs[i] > probs[bestIdx] {
			bestIdx = i
		}
	}

	return nb.classes[bestIdx], probs[bestIdx]
}

func trainingAccuracy(nb *naiveBayes, texts, labels []string) float64 {
	if len(texts) == 0 {
		return 0
	}
	correct := 0
	for i, text := range texts {
		if predicted, _ := nb.predict(text); predicted == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(texts))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}
