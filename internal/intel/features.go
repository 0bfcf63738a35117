package intel

import (
	"context"
	"fmt"

	"github.com/david/project-radar/internal/models"
)

// BuildWinFeatures assembles the win-probability feature vector for a
// project/company pair from the company record and participation history.
// Missing signals degrade to neutral defaults rather than failing; a nil
// company keeps the neutral win rate and zero history counts.
func BuildWinFeatures(ctx context.Context, reader ProjectReader, project *models.Project, company *models.Company) (WinFeatures, error) {
	features := WinFeatures{
		HistoricalWinRate: 0.5,
		CompetitionLevel:  0.5,
	}

	if project.EstimatedValue != nil {
		if *project.EstimatedValue < 0 {
			return features, fmt.Errorf("%w: negative estimated value", ErrInvalidInput)
		}
		features.ProjectValue = *project.EstimatedValue
	}

	if company != nil {
		if company.WinRate != nil {
			features.HistoricalWinRate = *company.WinRate
		} else if reader != nil {
			if rate, ok := historicalWinRate(ctx, reader, company); ok {
				features.HistoricalWinRate = rate
			}
		}

		features.PastProjects = float64(company.TotalProjects)

		if reader != nil {
			sector, err := reader.CountParticipationsByType(ctx, company.ID, project.ProjectType)
			if err == nil {
				features.SectorExperience = float64(sector)
			}
		}
	}

	if reader != nil {
		participants, err := reader.ParticipantCount(ctx, project.ID)
		if err == nil && participants > 0 {
			features.CompetitionLevel = minF(float64(participants)/10, 1.0)
		}
	}

	return features, nil
}

// historicalWinRate derives a win rate from participations with a known
// outcome. Returns ok=false when no outcomes are recorded.
func historicalWinRate(ctx context.Context, reader ProjectReader, company *models.Company) (float64, bool) {
	participations, err := reader.CompanyParticipations(ctx, company.ID)
	if err != nil || len(participations) == 0 {
		return 0, false
	}

	wins, decided := 0, 0
	for _, p := range participations {
		if p.Won == nil {
			continue
		}
		decided++
		if *p.Won {
			wins++
		}
	}
	if decided == 0 {
		return 0, false
	}
	return float64(wins) / float64(decided), true
}
