package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/david/project-radar/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")

	jwtSecretOnce    sync.Once
	jwtSecretRuntime []byte
	jwtSecretErr     error
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		log.Print("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	var user User
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, company_id)
		VALUES ($1, $2, $3)
		RETURNING id, email, company_id, is_admin, created_at
	`, req.Email, string(hash), req.CompanyID).Scan(&user.ID, &user.Email, &user.CompanyID, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.QueryRow(ctx, `
		SELECT id, email, password_hash, company_id, is_admin, created_at
		FROM users WHERE email = $1
	`, req.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.CompanyID, &user.IsAdmin, &user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(user)
	if err != nil {
		return nil, err
	}

	// Clear hash before returning
	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

// GetUser loads a user by id without the password hash.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	var user User
	err := s.db.QueryRow(ctx, `
		SELECT id, email, company_id, is_admin, created_at
		FROM users WHERE id = $1
	`, userID).Scan(&user.ID, &user.Email, &user.CompanyID, &user.IsAdmin, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func generateToken(user User) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"admin": user.IsAdmin,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// Watchlist

func (s *Service) SaveProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO saved_projects (user_id, project_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, userID, projectID)
	return err
}

func (s *Service) UnsaveProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `
		DELETE FROM saved_projects
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID)
	return err
}

func (s *Service) GetSavedProjects(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.title, p.description, p.project_type, p.stage,
		       p.estimated_value, p.currency, p.address, p.region, p.country,
		       p.start_date, p.bid_deadline, p.source, p.source_url,
		       p.is_verified, p.owner_company_id, p.created_at, p.updated_at
		FROM projects p
		JOIN saved_projects sp ON p.id = sp.project_id
		WHERE sp.user_id = $1
		ORDER BY sp.saved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.ProjectType, &p.Stage,
			&p.EstimatedValue, &p.Currency, &p.Address, &p.Region, &p.Country,
			&p.StartDate, &p.BidDeadline, &p.Source, &p.SourceURL,
			&p.IsVerified, &p.OwnerCompanyID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
