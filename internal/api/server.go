package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/david/project-radar/internal/ai"
	"github.com/david/project-radar/internal/auth"
	"github.com/david/project-radar/internal/db"
	"github.com/david/project-radar/internal/ingest"
	"github.com/david/project-radar/internal/intel"
	"github.com/david/project-radar/internal/models"
)

type Server struct {
	Store       *db.Store
	AuthService *auth.Service
	Echo        *echo.Echo
	DB          *pgxpool.Pool
	AI          *ai.OllamaClient
	Engine      *intel.Engine
	Registry    *ingest.Registry

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

func NewServer(pool *pgxpool.Pool) (*Server, error) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	store := db.NewStore(pool)
	authService := auth.NewService(pool)

	ollamaHost := os.Getenv("OLLAMA_HOST")
	if ollamaHost == "" {
		ollamaHost = "http://localhost:11434"
	}
	aiClient := ai.NewOllamaClient(ollamaHost, "", os.Getenv("OLLAMA_GEN_MODEL"))

	registry, err := ingest.LoadRegistry()
	if err != nil {
		return nil, fmt.Errorf("loading source registry: %w", err)
	}

	engine := intel.NewEngine(intel.DefaultScoringConfig(), store, aiClient, aiClient, store)

	s := &Server{
		DB:          pool,
		Store:       store,
		AuthService: authService,
		Echo:        e,
		AI:          aiClient,
		Engine:      engine,
		Registry:    registry,
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")

	api.GET("/projects", s.handleListProjects)
	api.GET("/projects/:id", s.handleGetProject)
	api.GET("/search", s.handleSearch)
	api.GET("/sources", s.handleGetSources)

	// Auth Routes
	api.POST("/auth/signup", s.handleSignup)
	api.POST("/auth/login", s.handleLogin)

	// Protected Routes (scoring and analysis)
	protected := api.Group("")
	protected.Use(auth.Middleware)
	protected.POST("/projects", s.handleCreateProject)
	protected.POST("/classify", s.handleClassify)
	protected.POST("/score", s.handleScore)
	protected.POST("/score/batch", s.handleScoreBatch)
	protected.POST("/win/predict", s.handlePredictWin)
	protected.GET("/win/importance", s.handleWinImportance)
	protected.GET("/projects/:id/similar", s.handleSimilarProjects)
	protected.GET("/forecast", s.handleForecast)
	protected.GET("/forecast/seasonality", s.handleSeasonality)

	// Watchlist
	saved := api.Group("/saved")
	saved.Use(auth.Middleware)
	saved.POST("/:id", s.handleSaveProject)
	saved.DELETE("/:id", s.handleUnsaveProject)
	saved.GET("", s.handleGetSavedProjects)

	// Admin Routes (training, ingestion, company management)
	admin := api.Group("/admin")
	admin.Use(auth.Middleware, auth.AdminMiddleware)
	admin.POST("/train/classifier", s.handleTrainClassifier)
	admin.POST("/train/win", s.handleTrainWinModel)
	admin.POST("/ingest/source/:id", s.handleIngestSource)
	admin.POST("/ingest/all", s.handleIngestAll)
	admin.GET("/job/:id", s.handleJobStatus)
	admin.POST("/companies", s.handleCreateCompany)
	admin.POST("/companies/:id/recompute", s.handleRecomputeCompany)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleSignup(c echo.Context) error {
	var req auth.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Signup(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrUserExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	resp, err := s.AuthService.Login(c.Request().Context(), req)
	if err != nil {
		if err == auth.ErrInvalidCreds {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListProjects(c echo.Context) error {
	params := db.ListParams{
		ProjectType: c.QueryParam("project_type"),
		Stage:       c.QueryParam("stage"),
		Region:      c.QueryParam("region"),
		Source:      c.QueryParam("source"),
		Limit:       20,
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}

	projects, err := s.Store.ListProjects(c.Request().Context(), params)
	if err != nil {
		c.Logger().Errorf("Failed to list projects: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGetProject(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}
	project, err := s.Store.GetProject(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}
	return c.JSON(http.StatusOK, project)
}

// handleSearch runs semantic search over stored projects using the query
// text's embedding.
func (s *Server) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "q param required"})
	}
	limit := 10
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	vec, err := s.Engine.Embeddings().EmbedText(c.Request().Context(), q)
	if err != nil {
		c.Logger().Errorf("Failed to embed query: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Embedding service unavailable"})
	}

	results, err := s.Store.SearchSimilarProjects(c.Request().Context(), vec, uuid.Nil, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if results == nil {
		results = []models.SimilarProject{}
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleGetSources(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Registry.Sources)
}

type createProjectRequest struct {
	models.Project
	Classify bool `json:"classify"`
}

// handleCreateProject stores a manually entered project. The record is
// classified when requested and embedded for similarity search when the
// embedding service is reachable.
func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}
	if req.EstimatedValue != nil && *req.EstimatedValue < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "estimated_value must be non-negative"})
	}

	ctx := c.Request().Context()
	project := req.Project
	if project.Source == "" {
		project.Source = models.SourceManual
	}

	if req.Classify || project.ProjectType == "" || project.Stage == "" {
		result := s.Engine.Classify(ctx, project.Title, project.Description, false)
		if project.ProjectType == "" {
			project.ProjectType = result.ProjectType
		}
		if project.Stage == "" {
			project.Stage = result.Stage
		}
	}

	if err := s.Store.UpsertProject(ctx, &project); err != nil {
		c.Logger().Errorf("Failed to store project: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	if vec, err := s.Engine.Embeddings().EmbedProject(ctx, &project); err == nil {
		if err := s.Store.UpdateProjectEmbedding(ctx, project.ID, vec); err != nil {
			c.Logger().Errorf("Failed to store embedding for %s: %v", project.ID, err)
		}
	} else {
		c.Logger().Warnf("Embedding unavailable for %s: %v", project.ID, err)
	}

	return c.JSON(http.StatusCreated, project)
}

type classifyRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	UseInference bool   `json:"use_inference"`
}

func (s *Server) handleClassify(c echo.Context) error {
	var req classifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	result := s.Engine.Classify(c.Request().Context(), req.Title, req.Description, req.UseInference)
	return c.JSON(http.StatusOK, result)
}

type scoreRequest struct {
	ProjectID             uuid.UUID  `json:"project_id"`
	CompanyID             *uuid.UUID `json:"company_id"`
	IncludeWinProbability bool       `json:"include_win_probability"`
}

// companyForRequest resolves the company to score against: the explicit
// company_id when given, otherwise the authenticated user's company.
func (s *Server) companyForRequest(c echo.Context, explicit *uuid.UUID) (uuid.UUID, error) {
	if explicit != nil && *explicit != uuid.Nil {
		return *explicit, nil
	}
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	user, err := s.AuthService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return uuid.Nil, err
	}
	if user.CompanyID == nil {
		return uuid.Nil, errors.New("no company associated with user; pass company_id")
	}
	return *user.CompanyID, nil
}

func (s *Server) handleScore(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	companyID, err := s.companyForRequest(c, req.CompanyID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	result, err := s.Engine.ScoreByID(c.Request().Context(), req.ProjectID, companyID, req.IncludeWinProbability)
	if err != nil {
		if errors.Is(err, intel.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "project or company not found"})
		}
		if errors.Is(err, intel.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		c.Logger().Errorf("Scoring failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, result)
}

type scoreBatchRequest struct {
	ProjectIDs []uuid.UUID `json:"project_ids"`
	CompanyID  *uuid.UUID  `json:"company_id"`
}

func (s *Server) handleScoreBatch(c echo.Context) error {
	var req scoreBatchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if len(req.ProjectIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "project_ids is required"})
	}
	if len(req.ProjectIDs) > 200 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "at most 200 projects per batch"})
	}

	companyID, err := s.companyForRequest(c, req.CompanyID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	company, err := s.Store.GetCompany(ctx, companyID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}

	projects := make([]*models.Project, 0, len(req.ProjectIDs))
	for _, id := range req.ProjectIDs {
		project, err := s.Store.GetProject(ctx, id)
		if err != nil {
			if errors.Is(err, intel.ErrNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": fmt.Sprintf("project %s not found", id)})
			}
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
		}
		projects = append(projects, project)
	}

	results, err := s.Engine.ScoreBatch(ctx, projects, company)
	if err != nil {
		c.Logger().Errorf("Batch scoring failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handlePredictWin(c echo.Context) error {
	var req scoreRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	companyID, err := s.companyForRequest(c, req.CompanyID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	ctx := c.Request().Context()
	project, err := s.Store.GetProject(ctx, req.ProjectID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	}
	company, err := s.Store.GetCompany(ctx, companyID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}

	prob, err := s.Engine.PredictWin(ctx, project, company)
	if err != nil {
		if errors.Is(err, intel.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"project_id":      project.ID,
		"company_id":      company.ID,
		"win_probability": prob,
		"model_trained":   s.Engine.WinModelTrained(),
	})
}

func (s *Server) handleWinImportance(c echo.Context) error {
	importance := s.Engine.WinFeatureImportance()
	if len(importance) == 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "win model is not trained"})
	}
	return c.JSON(http.StatusOK, importance)
}

func (s *Server) handleSimilarProjects(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	topK := 10
	if v, err := strconv.Atoi(c.QueryParam("top_k")); err == nil && v > 0 && v <= 50 {
		topK = v
	}
	minSimilarity := 0.0
	if v, err := strconv.ParseFloat(c.QueryParam("min_similarity"), 64); err == nil && v >= 0 && v <= 1 {
		minSimilarity = v
	}

	ctx := c.Request().Context()
	project, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}

	results, err := s.Engine.FindSimilar(ctx, project, topK, minSimilarity)
	if err != nil {
		c.Logger().Errorf("Similarity search failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Similarity search unavailable"})
	}
	if results == nil {
		results = []models.SimilarProject{}
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleForecast(c echo.Context) error {
	months := 6
	if v, err := strconv.Atoi(c.QueryParam("months")); err == nil && v > 0 && v <= 36 {
		months = v
	}

	ctx := c.Request().Context()
	history, err := s.Store.MonthlyProjectHistory(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	s.Engine.SetForecastHistory(history)

	points, err := s.Engine.Forecast(months)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"months_ahead":   months,
		"history_points": len(history),
		"forecast":       points,
	})
}

func (s *Server) handleSeasonality(c echo.Context) error {
	ctx := c.Request().Context()
	history, err := s.Store.MonthlyProjectHistory(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	s.Engine.SetForecastHistory(history)
	return c.JSON(http.StatusOK, s.Engine.AnalyzeSeasonality())
}

// Admin Handlers

func (s *Server) handleTrainClassifier(c echo.Context) error {
	ctx := c.Request().Context()
	samples, err := s.Store.ClassifierTrainingSamples(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	report, err := s.Engine.TrainClassifier(samples)
	if err != nil {
		if errors.Is(err, intel.ErrBadTrainingData) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleTrainWinModel(c echo.Context) error {
	ctx := c.Request().Context()
	participations, err := s.Store.DecidedParticipations(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	if len(participations) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no decided participations to train on"})
	}

	var features []intel.WinFeatures
	var outcomes []bool
	for _, part := range participations {
		project, err := s.Store.GetProject(ctx, part.ProjectID)
		if err != nil {
			continue
		}
		company, err := s.Store.GetCompany(ctx, part.CompanyID)
		if err != nil {
			continue
		}
		f, err := intel.BuildWinFeatures(ctx, s.Store, project, company)
		if err != nil {
			continue
		}
		features = append(features, f)
		outcomes = append(outcomes, *part.Won)
	}

	if err := s.Engine.TrainWinModel(features, outcomes); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":            "win model trained",
		"samples":            len(features),
		"feature_importance": s.Engine.WinFeatureImportance(),
	})
}

func (s *Server) ingestPipeline() *ingest.Pipeline {
	return ingest.NewPipeline(s.Registry, ingest.NewCollyFetcher(), s.Engine, s.Store)
}

func (s *Server) handleIngestSource(c echo.Context) error {
	sourceID := c.Param("id")
	stats, err := s.ingestPipeline().RunSource(c.Request().Context(), sourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("%s ingestion complete", sourceID),
		"stats":   stats,
	})
}

func (s *Server) handleIngestAll(c echo.Context) error {
	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "An ingestion job is already running",
			"job_id": job.ID,
		})
	}

	// context.WithoutCancel detaches from HTTP lifecycle but preserves
	// trace values. We add our own timeout for safety.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 30*time.Minute,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine — returns 202 immediately.
	go func() {
		defer jobCancel()
		results := s.ingestPipeline().RunAll(jobCtx)

		s.jobMu.Lock()
		job.Status = "completed"
		job.EndedAt = time.Now()
		job.Result = results
		s.jobMu.Unlock()
		log.Printf("[ingest-job %s] completed: %d sources", jobID, len(results))
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Ingestion job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	job := s.runningJob
	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateCompany(c echo.Context) error {
	var company models.Company
	if err := c.Bind(&company); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(company.Name) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	if company.CompanyType == "" {
		company.CompanyType = models.CompanyOther
	}

	if err := s.Store.InsertCompany(c.Request().Context(), &company); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	return c.JSON(http.StatusCreated, company)
}

func (s *Server) handleRecomputeCompany(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid company ID"})
	}
	if err := s.Store.RecomputeCompanyStats(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}
	company, err := s.Store.GetCompany(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}
	return c.JSON(http.StatusOK, company)
}

// Watchlist Handlers

func (s *Server) handleSaveProject(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	if err := s.AuthService.SaveProject(ctx, userID, projectID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save project"})
	}
	return c.NoContent(http.StatusOK)
}

func (s *Server) handleUnsaveProject(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	if err := s.AuthService.UnsaveProject(ctx, userID, projectID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to unsave project"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unsaved"})
}

func (s *Server) handleGetSavedProjects(c echo.Context) error {
	ctx := c.Request().Context()
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	projects, err := s.AuthService.GetSavedProjects(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch saved projects"})
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}
