package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Company is a service provider or vendor contact card.
type Company struct {
	Record
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Website  string `json:"website,omitempty"`
	Address  string `json:"address,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (c *Company) Kind() int     { return KindCompany }
func (c *Company) Meta() *Record { return &c.Record }

func (c *Company) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: company name is required", shared.ErrInvalidInput)
	}
	return nil
}
