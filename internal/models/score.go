package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreCategory buckets overall opportunity scores.
type ScoreCategory string

const (
	ScoreHigh   ScoreCategory = "high"
	ScoreMedium ScoreCategory = "medium"
	ScoreLow    ScoreCategory = "low"
)

// Recommendation is the suggested action for an opportunity.
type Recommendation string

const (
	RecommendPursue  Recommendation = "pursue"
	RecommendMonitor Recommendation = "monitor"
	RecommendPass    Recommendation = "pass"
)

// SubScores holds the five weighted components of an opportunity score,
// each in [0,1].
type SubScores struct {
	Fit         float64 `json:"fit_score"`
	Likelihood  float64 `json:"likelihood_score"`
	Size        float64 `json:"size_score"`
	Timing      float64 `json:"timing_score"`
	Competition float64 `json:"competition_score"`
}

// Reasoning is the human-readable trace attached to a score.
type Reasoning struct {
	Strengths  []string          `json:"strengths"`
	Concerns   []string          `json:"concerns"`
	KeyFactors map[string]string `json:"key_factors"`
}

// ScoreResult is computed fresh on every scoring call and never persisted
// by the engine itself. Category and Recommendation may disagree when the
// win-probability override fires; both are reported as computed.
type ScoreResult struct {
	ProjectID      uuid.UUID      `json:"project_id"`
	ProjectTitle   string         `json:"project_title"`
	OverallScore   float64        `json:"overall_score"`
	Category       ScoreCategory  `json:"category"`
	Scores         SubScores      `json:"scores"`
	WinProbability *float64       `json:"win_probability"`
	Recommendation Recommendation `json:"recommendation"`
	Reasoning      Reasoning      `json:"reasoning"`
}

// ClassificationResult is the outcome of classifying a project's text.
type ClassificationResult struct {
	ProjectType  ProjectType  `json:"project_type"`
	Stage        ProjectStage `json:"stage"`
	SizeCategory SizeCategory `json:"size_category"`
	Confidence   float64      `json:"confidence"`
	Method       string       `json:"method"` // "inference", "model" or "rules"
}

// ForecastPoint is one month of a demand forecast.
type ForecastPoint struct {
	Month           int     `json:"month"`
	PredictedValue  float64 `json:"predicted_value"`
	ConfidenceLower float64 `json:"confidence_lower"`
	ConfidenceUpper float64 `json:"confidence_upper"`
}

// SeasonalityResult reports per-calendar-month averages. Insufficient is
// set instead of an error when fewer than twelve data points exist.
type SeasonalityResult struct {
	Insufficient bool                   `json:"insufficient_data"`
	ByMonth      map[time.Month]float64 `json:"seasonality_by_month,omitempty"`
	PeakMonth    time.Month             `json:"peak_month,omitempty"`
	TroughMonth  time.Month             `json:"trough_month,omitempty"`
}

// SimilarProject is one hit from a similarity search.
type SimilarProject struct {
	ProjectID      uuid.UUID   `json:"project_id"`
	Title          string      `json:"title"`
	ProjectType    ProjectType `json:"project_type"`
	Region         string      `json:"region"`
	EstimatedValue *float64    `json:"estimated_value"`
	Similarity     float64     `json:"similarity"`
}
