package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/schedule"
	"github.com/hearthkeep/hearth/internal/shared"
)

// Appliance is a household appliance with optional warranty and attachment fields.
type Appliance struct {
	Record
	Name            string  `json:"name"`
	Brand           string  `json:"brand,omitempty"`
	Model           string  `json:"model,omitempty"`
	Serial          string  `json:"serial,omitempty"`
	PurchaseDate    string  `json:"purchase_date,omitempty"`
	PurchasePrice   float64 `json:"purchase_price,omitempty"`
	WarrantyExpires string  `json:"warranty_expires,omitempty"`
	Location        string  `json:"location,omitempty"`
	ManualURL       string  `json:"manual_url,omitempty"`
	ReceiptURL      string  `json:"receipt_url,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	PropertyID      string  `json:"property_id,omitempty"`
}

func (a *Appliance) Kind() int     { return KindAppliance }
func (a *Appliance) Meta() *Record { return &a.Record }

func (a *Appliance) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: appliance name is required", shared.ErrInvalidInput)
	}
	if err := validOptionalDate(a.PurchaseDate); err != nil {
		return err
	}
	if err := validOptionalDate(a.WarrantyExpires); err != nil {
		return err
	}
	if a.PurchasePrice < 0 {
		return fmt.Errorf("%w: purchase price cannot be negative", shared.ErrInvalidInput)
	}
	return nil
}

// validOptionalDate accepts an empty string or a well-formed MM/DD/YYYY date.
func validOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := schedule.ParseDate(s); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
