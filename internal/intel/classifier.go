package intel

import (
	"context"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/david/project-radar/internal/models"
)

// InferenceProvider is the optional external classification path (an
// LLM-style text-in, structured-out service). Implementations must validate
// their own output: a malformed or out-of-enum response is an error, which
// the classifier treats as "fall through to the next method".
type InferenceProvider interface {
	ClassifyProject(ctx context.Context, title, description string) (*models.ClassificationResult, error)
}

// inferenceTimeout bounds the external classification call.
const inferenceTimeout = 20 * time.Second

// typeKeywords drive the rule-based fallback. Order of evaluation follows
// models.ProjectTypes so ties resolve to the first declared type.
var typeKeywords = map[models.ProjectType][]string{
	models.TypeCommercial: {
		"office", "retail", "shopping", "mall", "store", "restaurant",
		"hotel", "commercial", "mixed-use",
	},
	models.TypeResidential: {
		"apartment", "condo", "housing", "residential", "home", "townhouse",
		"multifamily", "single-family", "duplex",
	},
	models.TypeIndustrial: {
		"warehouse", "manufacturing", "factory", "industrial", "plant",
		"distribution", "assembly", "production",
	},
	models.TypeInfrastructure: {
		"road", "bridge", "highway", "tunnel", "transit", "rail", "airport",
		"port", "utility", "water", "sewer", "pipeline",
	},
	models.TypeDataCenter: {
		"data center", "datacenter", "server", "colocation", "cloud",
		"hyperscale", "edge computing",
	},
	models.TypeLogistics: {
		"logistics", "fulfillment", "distribution center", "cold storage",
		"warehouse", "e-commerce", "sortation",
	},
	models.TypeHealthcare: {
		"hospital", "medical", "healthcare", "clinic", "surgery center",
		"nursing home", "care facility", "lab", "pharmacy",
	},
	models.TypeEducation: {
		"school", "university", "college", "education", "campus",
		"classroom", "library", "dormitory", "student housing",
	},
	models.TypeHospitality: {
		"hotel", "resort", "casino", "convention center", "hospitality",
		"restaurant", "entertainment venue",
	},
}

var stageKeywords = map[models.ProjectStage][]string{
	models.StagePlanning: {
		"proposed", "planning", "concept", "feasibility", "preliminary",
		"under consideration", "seeking approval",
	},
	models.StagePermit: {
		"permit", "application", "approval", "zoning", "submitted",
		"under review", "pending",
	},
	models.StageTender: {
		"tender", "bid", "rfp", "rfq", "solicitation", "seeking bids",
		"invitation to bid", "request for proposal",
	},
	models.StageAwarded: {
		"awarded", "selected", "won", "contract signed", "chosen contractor",
		"announcement",
	},
	models.StageConstruction: {
		"under construction", "building", "construction", "site work",
		"foundation", "framing", "in progress",
	},
	models.StageCompleted: {
		"completed", "finished", "delivered", "opened", "inaugurated",
		"substantial completion", "final inspection",
	},
}

var (
	squareFootageRe = regexp.MustCompile(`(?i)([\d,]+)\s?(?:sf|sq\.?\s?ft\.?|square feet)`)
	dollarAmountRe  = regexp.MustCompile(`(?i)\$?([\d,]+(?:\.\d+)?)\s?(million|billion|M|B)?`)
)

// ProjectClassifier assigns type, stage and size category to a project from
// its text, trying external inference, then a trained text model, then
// keyword rules. Train replaces the trained model atomically; retraining
// while classifications are in flight is undefined unless the caller
// serializes the two.
type ProjectClassifier struct {
	cfg       ScoringConfig
	inference InferenceProvider
	model     *textModel
}

func NewProjectClassifier(cfg ScoringConfig, inference InferenceProvider) *ProjectClassifier {
	return &ProjectClassifier{cfg: cfg, inference: inference}
}

// classificationStrategy is one method in the fallback chain. Returning an
// error or nil result means "try the next one".
type classificationStrategy func(ctx context.Context, title, description string) (*models.ClassificationResult, error)

// Classify runs the strategy chain in priority order. The rule-based tail
// has no external dependency and always succeeds, so Classify never fails.
func (c *ProjectClassifier) Classify(ctx context.Context, title, description string, useInference bool) *models.ClassificationResult {
	chain := []classificationStrategy{}
	if useInference && c.inference != nil {
		chain = append(chain, c.classifyWithInference)
	}
	if c.model != nil {
		chain = append(chain, c.classifyWithModel)
	}

	for _, strategy := range chain {
		result, err := strategy(ctx, title, description)
		if err != nil {
			log.Printf("classification strategy failed, falling through: %v", err)
			continue
		}
		if result != nil {
			return result
		}
	}

	return c.classifyWithRules(title, description)
}

func (c *ProjectClassifier) classifyWithInference(ctx context.Context, title, description string) (*models.ClassificationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, inferenceTimeout)
	defer cancel()

	result, err := c.inference.ClassifyProject(ctx, title, description)
	if err != nil {
		return nil, err
	}
	result.Method = "inference"
	if result.SizeCategory == "" || result.SizeCategory == models.SizeUnknown {
		result.SizeCategory = EstimateSizeCategory(title + " " + description)
	}
	return result, nil
}

func (c *ProjectClassifier) classifyWithModel(_ context.Context, title, description string) (*models.ClassificationResult, error) {
	model := c.model
	if model == nil {
		return nil, nil
	}

	text := title + " " + description
	projType, typeConf := model.typeModel.predict(text)
	stage, stageConf := model.stageModel.predict(text)
	confidence := (typeConf + stageConf) / 2

	// A low-confidence model result falls through to rules rather than
	// returning a weak guess.
	if confidence < c.cfg.MinModelConfidence {
		return nil, nil
	}

	return &models.ClassificationResult{
		ProjectType:  models.ProjectType(projType),
		Stage:        models.ProjectStage(stage),
		SizeCategory: EstimateSizeCategory(text),
		Confidence:   confidence,
		Method:       "model",
	}, nil
}

func (c *ProjectClassifier) classifyWithRules(title, description string) *models.ClassificationResult {
	text := strings.ToLower(title + " " + description)

	projType, typeConf := classifyTypeByKeywords(text, c.cfg)
	stage, stageConf := classifyStageByKeywords(text, c.cfg)

	return &models.ClassificationResult{
		ProjectType:  projType,
		Stage:        stage,
		SizeCategory: EstimateSizeCategory(text),
		Confidence:   (typeConf + stageConf) / 2,
		Method:       "rules",
	}
}

func classifyTypeByKeywords(textLower string, cfg ScoringConfig) (models.ProjectType, float64) {
	best := models.TypeOther
	bestHits := 0

	for _, projType := range models.ProjectTypes {
		hits := countKeywordHits(textLower, typeKeywords[projType])
		if hits > bestHits {
			best = projType
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return models.TypeOther, cfg.FallbackConfidence
	}
	return best, minF(float64(bestHits)/cfg.TypeKeywordNorm, 1.0)
}

func classifyStageByKeywords(textLower string, cfg ScoringConfig) (models.ProjectStage, float64) {
	best := models.StagePlanning
	bestHits := 0

	for _, stage := range models.ProjectStages {
		hits := countKeywordHits(textLower, stageKeywords[stage])
		if hits > bestHits {
			best = stage
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return models.StagePlanning, cfg.FallbackConfidence
	}
	return best, minF(float64(bestHits)/cfg.StageKeywordNorm, 1.0)
}

func countKeywordHits(textLower string, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(textLower, kw) {
			hits++
		}
	}
	return hits
}

// EstimateSizeCategory extracts square footage or a dollar amount from text
// and maps it to a size band. Dollar amounts are read in millions, with
// "billion" normalized to thousands of millions. Returns SizeUnknown when
// no pattern matches.
func EstimateSizeCategory(text string) models.SizeCategory {
	if m := squareFootageRe.FindStringSubmatch(text); m != nil {
		sf, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			switch {
			case sf < 50_000:
				return models.SizeSmall
			case sf < 250_000:
				return models.SizeMedium
			case sf < 1_000_000:
				return models.SizeLarge
			default:
				return models.SizeMega
			}
		}
	}

	if m := dollarAmountRe.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err == nil {
			unit := strings.ToLower(m[2])
			if strings.Contains(unit, "b") {
				amount *= 1000 // billions to millions
			}
			switch {
			case amount < 5:
				return models.SizeSmall
			case amount < 50:
				return models.SizeMedium
			case amount < 500:
				return models.SizeLarge
			default:
				return models.SizeMega
			}
		}
	}

	return models.SizeUnknown
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
