package intel

import (
	"context"
	"fmt"
	"time"

	"github.com/david/project-radar/internal/models"
	"github.com/google/uuid"
)

// Engine owns the two pieces of mutable model state (the trained classifier
// and the win-probability model) and wires the stateless scoring and
// forecasting functions around them. Inference calls against a trained
// model are safe to run concurrently; training is a full-replace operation
// that callers must serialize against in-flight predictions.
type Engine struct {
	cfg ScoringConfig

	reader     ProjectReader
	classifier *ProjectClassifier
	winModel   *WinProbabilityModel
	scorer     *OpportunityScorer
	forecaster *DemandForecastModel
	embeddings *EmbeddingsService
}

func NewEngine(cfg ScoringConfig, reader ProjectReader, inference InferenceProvider, embedder Embedder, searcher VectorSearcher) *Engine {
	winModel := NewWinProbabilityModel()
	return &Engine{
		cfg:        cfg,
		reader:     reader,
		classifier: NewProjectClassifier(cfg, inference),
		winModel:   winModel,
		scorer:     NewOpportunityScorer(cfg, reader, winModel),
		forecaster: NewDemandForecastModel(cfg),
		embeddings: NewEmbeddingsService(embedder, searcher),
	}
}

// Classify tags a project's text with type, stage and size category.
func (e *Engine) Classify(ctx context.Context, title, description string, useInference bool) *models.ClassificationResult {
	return e.classifier.Classify(ctx, title, description, useInference)
}

// TrainClassifier fits the text classification model.
func (e *Engine) TrainClassifier(samples []TrainingSample) (*TrainReport, error) {
	return e.classifier.Train(samples)
}

// Score produces a ScoreResult for one project/company pair.
func (e *Engine) Score(ctx context.Context, project *models.Project, company *models.Company, includeWinProb bool) (*models.ScoreResult, error) {
	return e.scorer.Score(ctx, project, company, includeWinProb)
}

// ScoreByID resolves ids through the reader and scores the pair.
func (e *Engine) ScoreByID(ctx context.Context, projectID, companyID uuid.UUID, includeWinProb bool) (*models.ScoreResult, error) {
	project, err := e.reader.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	company, err := e.reader.GetCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading company: %w", err)
	}
	return e.scorer.Score(ctx, project, company, includeWinProb)
}

// ScoreBatch scores projects independently and returns them ranked by
// overall score, descending.
func (e *Engine) ScoreBatch(ctx context.Context, projects []*models.Project, company *models.Company) ([]models.ScoreResult, error) {
	return e.scorer.ScoreBatch(ctx, projects, company)
}

// TrainWinModel fits the win-probability model on historical bid outcomes.
func (e *Engine) TrainWinModel(features []WinFeatures, won []bool) error {
	return e.winModel.Train(features, won)
}

// PredictWin returns the win probability for a project/company pair, or the
// 0.5 neutral prior if the model is untrained.
func (e *Engine) PredictWin(ctx context.Context, project *models.Project, company *models.Company) (float64, error) {
	features, err := BuildWinFeatures(ctx, e.reader, project, company)
	if err != nil {
		return 0, err
	}
	return e.winModel.Predict(features), nil
}

// WinFeatureImportance exposes the trained model's per-feature weights.
func (e *Engine) WinFeatureImportance() map[string]float64 {
	return e.winModel.FeatureImportance()
}

// SetForecastHistory loads the demand series used by Forecast and
// AnalyzeSeasonality.
func (e *Engine) SetForecastHistory(points []HistoryPoint) {
	e.forecaster.SetHistory(points)
}

// AddForecastPoint appends one demand observation.
func (e *Engine) AddForecastPoint(date time.Time, value float64) {
	e.forecaster.AddHistoricalData(date, value)
}

// Forecast projects demand monthsAhead months out.
func (e *Engine) Forecast(monthsAhead int) ([]models.ForecastPoint, error) {
	return e.forecaster.Forecast(monthsAhead)
}

// AnalyzeSeasonality reports per-calendar-month demand averages.
func (e *Engine) AnalyzeSeasonality() models.SeasonalityResult {
	return e.forecaster.AnalyzeSeasonality()
}

// FindSimilar returns stored projects semantically similar to the query.
func (e *Engine) FindSimilar(ctx context.Context, project *models.Project, topK int, minSimilarity float64) ([]models.SimilarProject, error) {
	return e.embeddings.FindSimilarProjects(ctx, project, topK, minSimilarity)
}

// Embeddings exposes the embeddings service for callers that need to embed
// free text (search queries, newly ingested projects).
func (e *Engine) Embeddings() *EmbeddingsService {
	return e.embeddings
}

// ClassifierTrained reports whether the text model path is available.
func (e *Engine) ClassifierTrained() bool {
	return e.classifier.Trained()
}

// WinModelTrained reports whether win predictions are model-backed.
func (e *Engine) WinModelTrained() bool {
	return e.winModel.Trained()
}
