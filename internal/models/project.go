package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Project statuses.
const (
	ProjectPlanned    = "planned"
	ProjectInProgress = "in_progress"
	ProjectCompleted  = "completed"
)

// Project is a home improvement project.
type Project struct {
	Record
	Name       string  `json:"name"`
	PropertyID string  `json:"property_id,omitempty"`
	Status     string  `json:"status,omitempty"`
	Budget     float64 `json:"budget,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

func (p *Project) Kind() int     { return KindProject }
func (p *Project) Meta() *Record { return &p.Record }

func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: project name is required", shared.ErrInvalidInput)
	}
	switch p.Status {
	case "", ProjectPlanned, ProjectInProgress, ProjectCompleted:
	default:
		return fmt.Errorf("%w: unknown project status %q", shared.ErrInvalidInput, p.Status)
	}
	if p.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}

// ProjectMaterial is a purchased material line item within a project.
type ProjectMaterial struct {
	Record
	ProjectID  string  `json:"project_id"`
	Name       string  `json:"name"`
	Cost       float64 `json:"cost"`
	Quantity   float64 `json:"quantity,omitempty"`
	CompanyID  string  `json:"company_id,omitempty"`
	ReceiptURL string  `json:"receipt_url,omitempty"`
}

func (m *ProjectMaterial) Kind() int     { return KindProjectMaterial }
func (m *ProjectMaterial) Meta() *Record { return &m.Record }

func (m *ProjectMaterial) Validate() error {
	if m.ProjectID == "" {
		return fmt.Errorf("%w: material requires a project", shared.ErrInvalidInput)
	}
	if m.Name == "" {
		return fmt.Errorf("%w: material name is required", shared.ErrInvalidInput)
	}
	if m.Cost < 0 {
		return fmt.Errorf("%w: cost cannot be negative", shared.ErrInvalidInput)
	}
	if m.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}
