package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Vehicle is a household vehicle record.
type Vehicle struct {
	Record
	Name          string  `json:"name"`
	Make          string  `json:"make,omitempty"`
	Model         string  `json:"model,omitempty"`
	Year          int     `json:"year,omitempty"`
	VIN           string  `json:"vin,omitempty"`
	Plate         string  `json:"plate,omitempty"`
	PurchaseDate  string  `json:"purchase_date,omitempty"`
	PurchasePrice float64 `json:"purchase_price,omitempty"`
	Odometer      int     `json:"odometer,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

func (v *Vehicle) Kind() int     { return KindVehicle }
func (v *Vehicle) Meta() *Record { return &v.Record }

func (v *Vehicle) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: vehicle name is required", shared.ErrInvalidInput)
	}
	if err := validOptionalDate(v.PurchaseDate); err != nil {
		return err
	}
	if v.Odometer < 0 {
		return fmt.Errorf("%w: odometer cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}
