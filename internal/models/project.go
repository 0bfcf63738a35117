package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectType categorizes construction projects by sector.
type ProjectType string

const (
	TypeCommercial     ProjectType = "commercial"
	TypeResidential    ProjectType = "residential"
	TypeIndustrial     ProjectType = "industrial"
	TypeInfrastructure ProjectType = "infrastructure"
	TypeDataCenter     ProjectType = "data_center"
	TypeLogistics      ProjectType = "logistics"
	TypeHealthcare     ProjectType = "healthcare"
	TypeEducation      ProjectType = "education"
	TypeHospitality    ProjectType = "hospitality"
	TypeOther          ProjectType = "other"
)

// ProjectTypes lists all types in declaration order. Rule-based
// classification breaks ties by this order.
var ProjectTypes = []ProjectType{
	TypeCommercial, TypeResidential, TypeIndustrial, TypeInfrastructure,
	TypeDataCenter, TypeLogistics, TypeHealthcare, TypeEducation,
	TypeHospitality, TypeOther,
}

// ProjectStage tracks where a project sits in its lifecycle.
type ProjectStage string

const (
	StagePlanning     ProjectStage = "planning"
	StagePermit       ProjectStage = "permit"
	StageTender       ProjectStage = "tender"
	StageBidding      ProjectStage = "bidding"
	StageAwarded      ProjectStage = "awarded"
	StageConstruction ProjectStage = "construction"
	StageCompleted    ProjectStage = "completed"
	StageCancelled    ProjectStage = "cancelled"
)

var ProjectStages = []ProjectStage{
	StagePlanning, StagePermit, StageTender, StageBidding,
	StageAwarded, StageConstruction, StageCompleted, StageCancelled,
}

// ProjectSource identifies where a project record came from.
type ProjectSource string

const (
	SourcePermit       ProjectSource = "permit"
	SourceTender       ProjectSource = "tender"
	SourceNews         ProjectSource = "news"
	SourceWebScrape    ProjectSource = "web_scrape"
	SourceManual       ProjectSource = "manual"
	SourceClientUpload ProjectSource = "client_upload"
	SourceAPI          ProjectSource = "api"
)

// SizeCategory buckets projects by square footage or dollar value.
type SizeCategory string

const (
	SizeSmall   SizeCategory = "small"
	SizeMedium  SizeCategory = "medium"
	SizeLarge   SizeCategory = "large"
	SizeMega    SizeCategory = "mega"
	SizeUnknown SizeCategory = "unknown"
)

// ValidProjectType reports whether s is a known project type.
func ValidProjectType(s string) bool {
	for _, t := range ProjectTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// ValidProjectStage reports whether s is a known project stage.
func ValidProjectStage(s string) bool {
	for _, st := range ProjectStages {
		if string(st) == s {
			return true
		}
	}
	return false
}

type Project struct {
	ID             uuid.UUID     `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	ProjectType    ProjectType   `json:"project_type"`
	Stage          ProjectStage  `json:"stage"`
	EstimatedValue *float64      `json:"estimated_value"`
	Currency       string        `json:"currency"`
	Address        string        `json:"address"`
	Region         string        `json:"region"`
	Country        string        `json:"country"`
	StartDate      *time.Time    `json:"start_date"`
	BidDeadline    *time.Time    `json:"bid_deadline"`
	Source         ProjectSource `json:"source"`
	SourceURL      string        `json:"source_url"`
	IsVerified     bool          `json:"is_verified"`
	OwnerCompanyID *uuid.UUID    `json:"owner_company_id"`
	Embedding      []float32     `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// ProjectParticipant links a company to a project with its bid outcome.
// Won is tri-state: nil means the outcome is not yet known. This is the
// ground truth the win-probability model trains on.
type ProjectParticipant struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	CompanyID uuid.UUID `json:"company_id"`
	Role      string    `json:"role"`
	BidAmount *float64  `json:"bid_amount"`
	Won       *bool     `json:"won"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
