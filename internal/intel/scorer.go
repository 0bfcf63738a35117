package intel

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/david/project-radar/internal/models"
)

// stageLikelihood maps lifecycle stage to the probability that the project
// actually goes ahead. Completed and cancelled projects are no longer
// opportunities.
var stageLikelihood = map[models.ProjectStage]float64{
	models.StagePlanning:     0.3,
	models.StagePermit:       0.5,
	models.StageTender:       0.8,
	models.StageBidding:      0.9,
	models.StageAwarded:      1.0,
	models.StageConstruction: 1.0,
	models.StageCompleted:    0.0,
	models.StageCancelled:    0.0,
}

// sourceReliability reflects how trustworthy each ingestion source is.
var sourceReliability = map[models.ProjectSource]float64{
	models.SourcePermit:       0.9,
	models.SourceTender:       1.0,
	models.SourceNews:         0.7,
	models.SourceWebScrape:    0.6,
	models.SourceManual:       0.8,
	models.SourceClientUpload: 1.0,
	models.SourceAPI:          0.9,
}

// OpportunityScorer combines fit, likelihood, size, timing and competition
// sub-scores into one ranked recommendation. Scoring is a pure function of
// its inputs plus the win model's trained state; missing optional data
// degrades to documented defaults instead of failing.
type OpportunityScorer struct {
	cfg      ScoringConfig
	reader   ProjectReader
	winModel *WinProbabilityModel
	now      func() time.Time
}

func NewOpportunityScorer(cfg ScoringConfig, reader ProjectReader, winModel *WinProbabilityModel) *OpportunityScorer {
	return &OpportunityScorer{
		cfg:      cfg,
		reader:   reader,
		winModel: winModel,
		now:      time.Now,
	}
}

// Score produces a full ScoreResult for one project/company pair. Only
// structurally invalid input is rejected; every missing optional field has
// a default sub-score.
func (s *OpportunityScorer) Score(ctx context.Context, project *models.Project, company *models.Company, includeWinProb bool) (*models.ScoreResult, error) {
	if err := validateProject(project); err != nil {
		return nil, err
	}

	sub := models.SubScores{
		Fit:         s.scoreFit(ctx, project, company),
		Likelihood:  s.scoreLikelihood(project),
		Size:        s.scoreSize(project, company),
		Timing:      s.scoreTiming(project),
		Competition: s.scoreCompetition(ctx, project),
	}

	overall := s.cfg.WeightFit*sub.Fit +
		s.cfg.WeightLikelihood*sub.Likelihood +
		s.cfg.WeightSize*sub.Size +
		s.cfg.WeightTiming*sub.Timing +
		s.cfg.WeightCompetition*sub.Competition

	var category models.ScoreCategory
	var recommendation models.Recommendation
	switch {
	case overall >= s.cfg.HighThreshold:
		category = models.ScoreHigh
		recommendation = models.RecommendPursue
	case overall >= s.cfg.MediumThreshold:
		category = models.ScoreMedium
		recommendation = models.RecommendMonitor
	default:
		category = models.ScoreLow
		recommendation = models.RecommendPass
	}

	var winProb *float64
	if includeWinProb && s.winModel != nil && s.winModel.Trained() {
		features, err := BuildWinFeatures(ctx, s.reader, project, company)
		if err != nil {
			log.Printf("could not calculate win probability for %s: %v", project.ID, err)
		} else {
			p := s.winModel.Predict(features)
			winProb = &p

			// The override can leave category and recommendation in
			// disagreement (e.g. category high, recommendation pass).
			// Both are reported as computed.
			if p < s.cfg.WinProbPassBelow {
				recommendation = models.RecommendPass
			} else if p > s.cfg.WinProbPursueAbove && overall >= s.cfg.WinProbPursueFloor {
				recommendation = models.RecommendPursue
			}
		}
	}

	return &models.ScoreResult{
		ProjectID:      project.ID,
		ProjectTitle:   project.Title,
		OverallScore:   overall,
		Category:       category,
		Scores:         sub,
		WinProbability: winProb,
		Recommendation: recommendation,
		Reasoning:      buildReasoning(company, sub, winProb),
	}, nil
}

// ScoreBatch scores each project independently (without win probability)
// and returns the results ranked by overall score, descending.
func (s *OpportunityScorer) ScoreBatch(ctx context.Context, projects []*models.Project, company *models.Company) ([]models.ScoreResult, error) {
	results := make([]models.ScoreResult, 0, len(projects))
	for _, project := range projects {
		result, err := s.Score(ctx, project, company, false)
		if err != nil {
			return nil, fmt.Errorf("scoring project %s: %w", project.ID, err)
		}
		results = append(results, *result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})
	return results, nil
}

func validateProject(project *models.Project) error {
	if project == nil {
		return fmt.Errorf("%w: nil project", ErrInvalidInput)
	}
	if project.EstimatedValue != nil && *project.EstimatedValue < 0 {
		return fmt.Errorf("%w: negative estimated value", ErrInvalidInput)
	}
	if project.ProjectType != "" && !models.ValidProjectType(string(project.ProjectType)) {
		return fmt.Errorf("%w: unknown project type %q", ErrInvalidInput, project.ProjectType)
	}
	if project.Stage != "" && !models.ValidProjectStage(string(project.Stage)) {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, project.Stage)
	}
	return nil
}

// scoreFit measures how well the project matches company capabilities:
// type, geography, relative size and overall experience.
func (s *OpportunityScorer) scoreFit(ctx context.Context, project *models.Project, company *models.Company) float64 {
	if company == nil {
		return 0.5
	}

	// Type match: exact specialty, substring specialty, or track record in
	// the same project type.
	typeScore := 0.0
	typeStr := string(project.ProjectType)
	switch {
	case containsString(company.Specialties, typeStr):
		typeScore = 1.0
	case anySubstring(company.Specialties, typeStr):
		typeScore = 0.7
	default:
		if s.reader != nil {
			if count, err := s.reader.CountParticipationsByType(ctx, company.ID, project.ProjectType); err == nil {
				typeScore = minF(float64(count)/10, 1.0)
			}
		}
	}

	// Geography: HQ match, or regional track record — whichever is stronger.
	geoScore := 0.0
	if company.HeadquartersCountry != "" && company.HeadquartersCountry == project.Country {
		geoScore += 0.5
	}
	if company.HeadquartersRegion != "" && company.HeadquartersRegion == project.Region {
		geoScore += 0.5
	}
	if s.reader != nil && project.Region != "" {
		if count, err := s.reader.CountParticipationsByRegion(ctx, company.ID, project.Region); err == nil && count > 0 {
			geoScore = maxF(geoScore, minF(float64(count)/5, 1.0))
		}
	}

	// Size: projects between 0.5x and 2x the company's typical size fit best.
	sizeScore := 0.5
	if project.EstimatedValue != nil && company.AverageProjectSize != nil && *company.AverageProjectSize > 0 {
		ratio := *project.EstimatedValue / *company.AverageProjectSize
		switch {
		case ratio >= 0.5 && ratio <= 2.0:
			sizeScore = 1.0
		case ratio >= 0.25 && ratio <= 4.0:
			sizeScore = 0.7
		default:
			sizeScore = 0.4
		}
	}

	experienceScore := 0.3
	if company.TotalProjects > 0 {
		experienceScore = minF(float64(company.TotalProjects)/50, 1.0)
	}

	return s.cfg.FitWeightType*typeScore +
		s.cfg.FitWeightGeography*geoScore +
		s.cfg.FitWeightSize*sizeScore +
		s.cfg.FitWeightExperience*experienceScore
}

// scoreLikelihood estimates whether the project will actually go ahead
// from its stage, data completeness and source reliability.
func (s *OpportunityScorer) scoreLikelihood(project *models.Project) float64 {
	stageScore, ok := stageLikelihood[project.Stage]
	if !ok {
		stageScore = 0.5
	}

	present := 0
	if project.OwnerCompanyID != nil {
		present++
	}
	if project.EstimatedValue != nil {
		present++
	}
	if project.StartDate != nil {
		present++
	}
	if project.Address != "" {
		present++
	}
	if project.Description != "" {
		present++
	}
	completeness := float64(present) / 5

	sourceScore, ok := sourceReliability[project.Source]
	if !ok {
		sourceScore = 0.5
	}

	verifiedBoost := 0.0
	if project.IsVerified {
		verifiedBoost = 0.2
	}

	score := 0.4*stageScore + 0.3*completeness + 0.2*sourceScore + 0.1 + verifiedBoost
	return minF(score, 1.0)
}

// scoreSize blends the project's absolute value tier with its size relative
// to the company's typical project.
func (s *OpportunityScorer) scoreSize(project *models.Project, company *models.Company) float64 {
	if project.EstimatedValue == nil {
		return 0.5
	}
	value := *project.EstimatedValue

	var valueScore float64
	switch {
	case value < 1_000_000:
		valueScore = 0.3
	case value < 5_000_000:
		valueScore = 0.5
	case value < 25_000_000:
		valueScore = 0.7
	case value < 100_000_000:
		valueScore = 0.85
	default:
		valueScore = 1.0
	}

	relativeScore := 0.7
	if company != nil && company.AverageProjectSize != nil && *company.AverageProjectSize > 0 {
		ratio := value / *company.AverageProjectSize
		switch {
		case ratio >= 1.0 && ratio <= 3.0:
			relativeScore = 1.0
		case ratio >= 0.5 && ratio <= 5.0:
			relativeScore = 0.8
		default:
			relativeScore = 0.6
		}
	}

	return 0.6*valueScore + 0.4*relativeScore
}

// scoreTiming rates the opportunity window from the bid deadline, falling
// back to the start date.
func (s *OpportunityScorer) scoreTiming(project *models.Project) float64 {
	now := s.now()

	if project.BidDeadline != nil {
		daysUntil := math.Floor(project.BidDeadline.Sub(now).Hours() / 24)
		switch {
		case daysUntil < 0:
			return 0.0 // already passed
		case daysUntil < 7:
			return 0.3 // too urgent to prepare a serious bid
		case daysUntil < 30:
			return 1.0
		case daysUntil < 90:
			return 0.8
		case daysUntil < 180:
			return 0.6
		default:
			return 0.4
		}
	}

	if project.StartDate != nil {
		monthsUntil := project.StartDate.Sub(now).Hours() / 24 / 30
		switch {
		case monthsUntil < 1:
			return 0.5
		case monthsUntil < 6:
			return 0.8
		case monthsUntil < 12:
			return 0.7
		default:
			return 0.5
		}
	}

	return 0.5
}

// scoreCompetition rates expected competitive intensity: direct participant
// counts when known, otherwise the average across comparable projects.
// High-value projects attract more bidders, small ones fewer; the value
// adjustment multiplies the bounded score and re-clamps, which introduces a
// step at the value thresholds. That is the intended behavior.
func (s *OpportunityScorer) scoreCompetition(ctx context.Context, project *models.Project) float64 {
	score := 0.6

	known := 0
	if s.reader != nil {
		if count, err := s.reader.ParticipantCount(ctx, project.ID); err == nil {
			known = count
		}
	}

	if known > 0 {
		switch {
		case known <= 3:
			score = 1.0
		case known <= 5:
			score = 0.8
		case known <= 8:
			score = 0.6
		default:
			score = 0.4
		}
	} else if s.reader != nil {
		counts, err := s.reader.ComparableParticipantCounts(ctx, project.ProjectType, project.Region, project.Stage, project.ID, 50)
		if err == nil && len(counts) > 0 {
			total := 0
			for _, c := range counts {
				total += c
			}
			mean := float64(total) / float64(len(counts))
			score = 1.0 - minF(mean/10, 1.0)
		}
	}

	if project.EstimatedValue != nil {
		if *project.EstimatedValue > 100_000_000 {
			score *= 0.7
		} else if *project.EstimatedValue < 5_000_000 {
			score *= 1.2
		}
		score = minF(score, 1.0)
	}

	return score
}

func buildReasoning(company *models.Company, sub models.SubScores, winProb *float64) models.Reasoning {
	reasoning := models.Reasoning{
		Strengths: []string{},
		Concerns:  []string{},
	}

	companyName := "the company"
	if company != nil && company.Name != "" {
		companyName = company.Name
	}

	if sub.Fit >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, fmt.Sprintf("Strong fit with %s's capabilities", companyName))
	}
	if sub.Likelihood >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, "High likelihood of proceeding")
	}
	if sub.Size >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, "Good project size match")
	}
	if sub.Timing >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, "Favorable timeline")
	}
	if sub.Competition >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, "Lower competitive intensity")
	}
	if winProb != nil && *winProb >= 0.7 {
		reasoning.Strengths = append(reasoning.Strengths, fmt.Sprintf("High win probability (%.0f%%)", *winProb*100))
	}

	if sub.Fit < 0.5 {
		reasoning.Concerns = append(reasoning.Concerns, "Limited experience in this project type or region")
	}
	if sub.Likelihood < 0.5 {
		reasoning.Concerns = append(reasoning.Concerns, "Uncertain if project will proceed")
	}
	if sub.Size < 0.5 {
		reasoning.Concerns = append(reasoning.Concerns, "Project size outside typical range")
	}
	if sub.Timing < 0.5 {
		reasoning.Concerns = append(reasoning.Concerns, "Timeline may be too tight or too far out")
	}
	if sub.Competition < 0.5 {
		reasoning.Concerns = append(reasoning.Concerns, "Expected high competition")
	}
	if winProb != nil && *winProb < 0.4 {
		reasoning.Concerns = append(reasoning.Concerns, fmt.Sprintf("Low win probability (%.0f%%)", *winProb*100))
	}

	reasoning.KeyFactors = map[string]string{
		"fit":         tier(sub.Fit, "high", "medium", "low"),
		"likelihood":  tier(sub.Likelihood, "high", "medium", "low"),
		"size":        tier(sub.Size, "good", "acceptable", "poor"),
		"competition": tier(sub.Competition, "low", "moderate", "high"),
	}
	switch {
	case sub.Timing >= 0.8:
		reasoning.KeyFactors["timing"] = "urgent"
	case sub.Timing >= 0.6:
		reasoning.KeyFactors["timing"] = "good"
	default:
		reasoning.KeyFactors["timing"] = "distant"
	}

	return reasoning
}

func tier(score float64, high, mid, low string) string {
	switch {
	case score >= 0.7:
		return high
	case score >= 0.5:
		return mid
	default:
		return low
	}
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func anySubstring(list []string, s string) bool {
	for _, item := range list {
		if item != "" && strings.Contains(s, item) {
			return true
		}
	}
	return false
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
