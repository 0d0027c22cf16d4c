package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/schedule"
	"github.com/hearthkeep/hearth/internal/shared"
)

// Maintenance target kinds. A schedule can point at an appliance, a vehicle,
// or a property.
const (
	TargetAppliance = "appliance"
	TargetVehicle   = "vehicle"
	TargetProperty  = "property"
)

// MaintenanceSchedule is a recurring maintenance task definition.
type MaintenanceSchedule struct {
	Record
	Name          string  `json:"name"`
	TargetKind    string  `json:"target_kind,omitempty"`
	TargetID      string  `json:"target_id,omitempty"`
	Frequency     int     `json:"frequency"`
	FrequencyUnit string  `json:"frequency_unit"`
	BaseDate      string  `json:"base_date,omitempty"`
	Instructions  string  `json:"instructions,omitempty"`
	EstimatedCost float64 `json:"estimated_cost,omitempty"`
}

func (s *MaintenanceSchedule) Kind() int     { return KindMaintenanceSchedule }
func (s *MaintenanceSchedule) Meta() *Record { return &s.Record }

func (s *MaintenanceSchedule) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: schedule name is required", shared.ErrInvalidInput)
	}
	if s.Frequency <= 0 {
		return fmt.Errorf("%w: frequency must be positive", shared.ErrInvalidInput)
	}
	if !schedule.ValidUnit(s.FrequencyUnit) {
		return fmt.Errorf("%w: frequency unit must be days, weeks, months, or years", shared.ErrInvalidInput)
	}
	if err := validOptionalDate(s.BaseDate); err != nil {
		return err
	}
	switch s.TargetKind {
	case "", TargetAppliance, TargetVehicle, TargetProperty:
	default:
		return fmt.Errorf("%w: unknown target kind %q", shared.ErrInvalidInput, s.TargetKind)
	}
	return nil
}

// MaintenanceCompletion records one completed occurrence of a schedule.
type MaintenanceCompletion struct {
	Record
	ScheduleID    string  `json:"schedule_id"`
	CompletedDate string  `json:"completed_date"`
	Cost          float64 `json:"cost,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	ReceiptURL    string  `json:"receipt_url,omitempty"`
}

func (c *MaintenanceCompletion) Kind() int     { return KindMaintenanceCompletion }
func (c *MaintenanceCompletion) Meta() *Record { return &c.Record }

func (c *MaintenanceCompletion) Validate() error {
	if c.ScheduleID == "" {
		return fmt.Errorf("%w: completion requires a schedule", shared.ErrInvalidInput)
	}
	if c.CompletedDate == "" {
		return fmt.Errorf("%w: completion date is required", shared.ErrInvalidInput)
	}
	if _, err := schedule.ParseDate(c.CompletedDate); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if c.Cost < 0 {
		return fmt.Errorf("%w: cost cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}
