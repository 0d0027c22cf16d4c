package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Property is a home or other real estate record that appliances, schedules,
// and projects can reference.
type Property struct {
	Record
	Name          string  `json:"name"`
	Address       string  `json:"address,omitempty"`
	Type          string  `json:"type,omitempty"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`
	PurchasePrice float64 `json:"purchase_price,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

func (p *Property) Kind() int     { return KindProperty }
func (p *Property) Meta() *Record { return &p.Record }

func (p *Property) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: property name is required", shared.ErrInvalidInput)
	}
	return validOptionalDate(p.PurchaseDate)
}
