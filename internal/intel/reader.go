package intel

import (
	"context"
	"time"

	"github.com/david/project-radar/internal/models"
	"github.com/google/uuid"
)

// ProjectReader is the engine's view of persisted project and company data.
// The engine only reads; all writes belong to ingestion and enrichment
// collaborators. Implemented by db.Store.
type ProjectReader interface {
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// CountParticipationsByType counts a company's past participations in
	// projects of the given type.
	CountParticipationsByType(ctx context.Context, companyID uuid.UUID, projectType models.ProjectType) (int, error)

	// CountParticipationsByRegion counts a company's past participations in
	// projects in the given region.
	CountParticipationsByRegion(ctx context.Context, companyID uuid.UUID, region string) (int, error)

	// ParticipantCount returns how many companies are known to be on a
	// project. Zero means no participant intelligence, not an empty field.
	ParticipantCount(ctx context.Context, projectID uuid.UUID) (int, error)

	// ComparableParticipantCounts returns the participant count of up to
	// limit projects sharing type, region and stage with the query,
	// excluding the query project itself.
	ComparableParticipantCounts(ctx context.Context, projectType models.ProjectType, region string, stage models.ProjectStage, exclude uuid.UUID, limit int) ([]int, error)

	// CompanyParticipations returns a company's full participation history,
	// used to derive win rates and training sets.
	CompanyParticipations(ctx context.Context, companyID uuid.UUID) ([]models.ProjectParticipant, error)
}

// HistoryPoint is one dated observation for demand forecasting.
type HistoryPoint struct {
	Date  time.Time
	Value float64
}
