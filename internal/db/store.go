package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/david/project-radar/internal/intel"
	"github.com/david/project-radar/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store implements intel.ProjectReader plus the write paths used by
// ingestion and enrichment.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const projectCols = `id, title, description, project_type, stage, estimated_value, currency,
	address, region, country, start_date, bid_deadline, source, source_url,
	is_verified, owner_company_id, embedding, created_at, updated_at`

func scanProject(scan func(dest ...interface{}) error) (models.Project, error) {
	var p models.Project
	var description, address, region, country, sourceURL *string
	var embedding *pgvector.Vector

	err := scan(
		&p.ID, &p.Title, &description, &p.ProjectType, &p.Stage, &p.EstimatedValue, &p.Currency,
		&address, &region, &country, &p.StartDate, &p.BidDeadline, &p.Source, &sourceURL,
		&p.IsVerified, &p.OwnerCompanyID, &embedding, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if description != nil {
		p.Description = *description
	}
	if address != nil {
		p.Address = *address
	}
	if region != nil {
		p.Region = *region
	}
	if country != nil {
		p.Country = *country
	}
	if sourceURL != nil {
		p.SourceURL = *sourceURL
	}
	if embedding != nil {
		p.Embedding = embedding.Slice()
	}
	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectCols+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, intel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *Store) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var c models.Company
	var country, region *string

	err := s.pool.QueryRow(ctx, `
		SELECT id, name, company_type, specialties, headquarters_country, headquarters_region,
			average_project_size, total_projects, win_rate, created_at, updated_at
		FROM companies WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.Name, &c.CompanyType, &c.Specialties, &country, &region,
		&c.AverageProjectSize, &c.TotalProjects, &c.WinRate, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, intel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	if country != nil {
		c.HeadquartersCountry = *country
	}
	if region != nil {
		c.HeadquartersRegion = *region
	}
	return &c, nil
}

func (s *Store) CountParticipationsByType(ctx context.Context, companyID uuid.UUID, projectType models.ProjectType) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM project_participants pp
		JOIN projects p ON p.id = pp.project_id
		WHERE pp.company_id = $1 AND p.project_type = $2`,
		companyID, projectType,
	).Scan(&count)
	return count, err
}

func (s *Store) CountParticipationsByRegion(ctx context.Context, companyID uuid.UUID, region string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM project_participants pp
		JOIN projects p ON p.id = pp.project_id
		WHERE pp.company_id = $1 AND p.region = $2`,
		companyID, region,
	).Scan(&count)
	return count, err
}

func (s *Store) ParticipantCount(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM project_participants WHERE project_id = $1`, projectID,
	).Scan(&count)
	return count, err
}

func (s *Store) ComparableParticipantCounts(ctx context.Context, projectType models.ProjectType, region string, stage models.ProjectStage, exclude uuid.UUID, limit int) ([]int, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COUNT(pp.id)
		FROM projects p
		LEFT JOIN project_participants pp ON pp.project_id = p.id
		WHERE p.project_type = $1 AND p.region = $2 AND p.stage = $3 AND p.id <> $4
		GROUP BY p.id
		LIMIT $5`,
		projectType, region, stage, exclude, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("comparable participant counts: %w", err)
	}
	defer rows.Close()

	var counts []int
	for rows.Next() {
		var count int
		if err := rows.Scan(&count); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

func (s *Store) CompanyParticipations(ctx context.Context, companyID uuid.UUID) ([]models.ProjectParticipant, error) {
	return s.queryParticipants(ctx,
		`SELECT id, project_id, company_id, role, bid_amount, won, status, created_at
		 FROM project_participants WHERE company_id = $1 ORDER BY created_at`, companyID)
}

// DecidedParticipations returns every participation with a known outcome —
// the training set for the win-probability model.
func (s *Store) DecidedParticipations(ctx context.Context) ([]models.ProjectParticipant, error) {
	return s.queryParticipants(ctx,
		`SELECT id, project_id, company_id, role, bid_amount, won, status, created_at
		 FROM project_participants WHERE won IS NOT NULL ORDER BY created_at`)
}

func (s *Store) queryParticipants(ctx context.Context, sql string, args ...any) ([]models.ProjectParticipant, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var out []models.ProjectParticipant
	for rows.Next() {
		var p models.ProjectParticipant
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.CompanyID, &p.Role, &p.BidAmount, &p.Won, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListParams filters project listings.
type ListParams struct {
	ProjectType string
	Stage       string
	Region      string
	Source      string
	Limit       int
	Offset      int
}

func (s *Store) ListProjects(ctx context.Context, params ListParams) ([]models.Project, error) {
	if params.Limit <= 0 {
		params.Limit = 50
	}

	var conds []string
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if params.ProjectType != "" {
		add("project_type = $%d", params.ProjectType)
	}
	if params.Stage != "" {
		add("stage = $%d", params.Stage)
	}
	if params.Region != "" {
		add("region = $%d", params.Region)
	}
	if params.Source != "" {
		add("source = $%d", params.Source)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, params.Limit, params.Offset)
	sql := fmt.Sprintf("SELECT %s FROM projects%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		projectCols, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpsertProject inserts or refreshes a project. Re-running ingestion over
// the same pages must not duplicate records, so ingest callers derive the
// id deterministically from the source URL.
func (s *Store) UpsertProject(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, title, description, project_type, stage, estimated_value, currency,
			address, region, country, start_date, bid_deadline, source, source_url,
			is_verified, owner_company_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			project_type = EXCLUDED.project_type,
			stage = EXCLUDED.stage,
			estimated_value = EXCLUDED.estimated_value,
			bid_deadline = EXCLUDED.bid_deadline,
			updated_at = NOW()`,
		p.ID, p.Title, p.Description, p.ProjectType, p.Stage, p.EstimatedValue, p.Currency,
		p.Address, p.Region, p.Country, p.StartDate, p.BidDeadline, p.Source, p.SourceURL,
		p.IsVerified, p.OwnerCompanyID,
	)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// UpdateProjectEmbedding stores the semantic vector for a project.
func (s *Store) UpdateProjectEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE projects SET embedding = $2, updated_at = NOW() WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("update embedding: %w", err)
	}
	return nil
}

// SearchSimilarProjects ranks stored projects by cosine similarity to the
// query embedding. pgvector's <=> operator is cosine distance, so
// similarity = 1 - distance.
func (s *Store) SearchSimilarProjects(ctx context.Context, embedding []float32, exclude uuid.UUID, limit int) ([]models.SimilarProject, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, project_type, region, estimated_value,
			1 - (embedding <=> $1) AS similarity
		FROM projects
		WHERE embedding IS NOT NULL AND id <> $2
		ORDER BY embedding <=> $1
		LIMIT $3`,
		pgvector.NewVector(embedding), exclude, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var hits []models.SimilarProject
	for rows.Next() {
		var hit models.SimilarProject
		var region *string
		if err := rows.Scan(&hit.ProjectID, &hit.Title, &hit.ProjectType, &region, &hit.EstimatedValue, &hit.Similarity); err != nil {
			return nil, err
		}
		if region != nil {
			hit.Region = *region
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

// MonthlyProjectHistory aggregates estimated project value by month of
// creation — the series the demand forecaster consumes.
func (s *Store) MonthlyProjectHistory(ctx context.Context) ([]intel.HistoryPoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date_trunc('month', created_at) AS month, COALESCE(SUM(estimated_value), 0)
		FROM projects
		GROUP BY month
		ORDER BY month`)
	if err != nil {
		return nil, fmt.Errorf("monthly history: %w", err)
	}
	defer rows.Close()

	var points []intel.HistoryPoint
	for rows.Next() {
		var point intel.HistoryPoint
		if err := rows.Scan(&point.Date, &point.Value); err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, rows.Err()
}

// ClassifierTrainingSamples builds labeled documents from verified
// projects for classifier training.
func (s *Store) ClassifierTrainingSamples(ctx context.Context) ([]intel.TrainingSample, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT title || ' ' || COALESCE(description, ''), project_type, stage
		FROM projects
		WHERE is_verified = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("training samples: %w", err)
	}
	defer rows.Close()

	var samples []intel.TrainingSample
	for rows.Next() {
		var sample intel.TrainingSample
		if err := rows.Scan(&sample.Text, &sample.ProjectType, &sample.Stage); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// RecomputeCompanyStats refreshes the derived company fields (win rate,
// average project size, total projects) from participation history. These
// are never written directly anywhere else.
func (s *Store) RecomputeCompanyStats(ctx context.Context, companyID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE companies c SET
			total_projects = stats.total,
			win_rate = stats.win_rate,
			average_project_size = stats.avg_size,
			updated_at = NOW()
		FROM (
			SELECT
				COUNT(*) AS total,
				CASE WHEN COUNT(pp.won) > 0
					THEN COUNT(*) FILTER (WHERE pp.won)::float / COUNT(pp.won)
					ELSE NULL END AS win_rate,
				AVG(p.estimated_value) AS avg_size
			FROM project_participants pp
			JOIN projects p ON p.id = pp.project_id
			WHERE pp.company_id = $1
		) stats
		WHERE c.id = $1`,
		companyID,
	)
	if err != nil {
		return fmt.Errorf("recompute company stats: %w", err)
	}
	return nil
}

// InsertCompany creates a company record (used by ingestion when an
// extracted participant is unknown).
func (s *Store) InsertCompany(ctx context.Context, c *models.Company) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Specialties == nil {
		c.Specialties = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO companies (id, name, company_type, specialties, headquarters_country, headquarters_region)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO NOTHING`,
		c.ID, c.Name, c.CompanyType, c.Specialties, c.HeadquartersCountry, c.HeadquartersRegion,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}
