package intel

// ScoringConfig collects every weight and threshold used by the scorer,
// classifier and forecaster so boundary values can be probed in tests and
// tuned per deployment without touching scoring code.
type ScoringConfig struct {
	// Overall blend weights. Must sum to 1.0.
	WeightFit         float64
	WeightLikelihood  float64
	WeightSize        float64
	WeightTiming      float64
	WeightCompetition float64

	// Category boundaries on the overall score.
	HighThreshold   float64 // >= high / pursue
	MediumThreshold float64 // >= medium / monitor

	// Win-probability override bounds.
	WinProbPassBelow   float64 // recommendation forced to pass
	WinProbPursueAbove float64 // forced to pursue when overall also clears
	WinProbPursueFloor float64 // ...this overall floor

	// Fit sub-weights.
	FitWeightType       float64
	FitWeightGeography  float64
	FitWeightSize       float64
	FitWeightExperience float64

	// Classifier settings.
	MinModelConfidence float64 // trained-model result accepted at or above
	TypeKeywordNorm    float64 // hits / norm, capped at 1.0
	StageKeywordNorm   float64
	FallbackConfidence float64 // returned when no keyword matches

	// Forecaster settings.
	SeasonalAmplitude   float64
	ForecastLowerFactor float64
	ForecastUpperFactor float64
	DefaultForecastBase float64
}

// DefaultScoringConfig returns the production weights.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		WeightFit:         0.30,
		WeightLikelihood:  0.25,
		WeightSize:        0.20,
		WeightTiming:      0.15,
		WeightCompetition: 0.10,

		HighThreshold:   0.7,
		MediumThreshold: 0.5,

		WinProbPassBelow:   0.3,
		WinProbPursueAbove: 0.7,
		WinProbPursueFloor: 0.6,

		FitWeightType:       0.35,
		FitWeightGeography:  0.25,
		FitWeightSize:       0.20,
		FitWeightExperience: 0.20,

		MinModelConfidence: 0.7,
		TypeKeywordNorm:    3,
		StageKeywordNorm:   2,
		FallbackConfidence: 0.3,

		SeasonalAmplitude:   0.1,
		ForecastLowerFactor: 0.8,
		ForecastUpperFactor: 1.2,
		DefaultForecastBase: 100,
	}
}
