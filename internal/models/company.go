package models

import (
	"time"

	"github.com/google/uuid"
)

// CompanyType categorizes companies in the construction ecosystem.
type CompanyType string

const (
	CompanyGeneralContractor CompanyType = "general_contractor"
	CompanySubcontractor     CompanyType = "subcontractor"
	CompanySupplier          CompanyType = "supplier"
	CompanyOwner             CompanyType = "owner"
	CompanyDeveloper         CompanyType = "developer"
	CompanyArchitect         CompanyType = "architect"
	CompanyEngineer          CompanyType = "engineer"
	CompanyConsultant        CompanyType = "consultant"
	CompanyOther             CompanyType = "other"
)

// Company is a participant in the construction market. WinRate,
// AverageProjectSize and TotalProjects are derived from participation
// history and recomputed periodically — never authored directly.
type Company struct {
	ID                  uuid.UUID   `json:"id"`
	Name                string      `json:"name"`
	CompanyType         CompanyType `json:"company_type"`
	Specialties         []string    `json:"specialties"`
	HeadquartersCountry string      `json:"headquarters_country"`
	HeadquartersRegion  string      `json:"headquarters_region"`
	AverageProjectSize  *float64    `json:"average_project_size"`
	TotalProjects       int         `json:"total_projects"`
	WinRate             *float64    `json:"win_rate"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}
