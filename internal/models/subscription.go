package models

import (
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
)

// Billing cycles accepted by subscriptions.
const (
	CycleMonthly   = "monthly"
	CycleQuarterly = "quarterly"
	CycleYearly    = "yearly"
)

// Subscription is a recurring household expense.
type Subscription struct {
	Record
	Name         string  `json:"name"`
	Cost         float64 `json:"cost"`
	BillingCycle string  `json:"billing_cycle,omitempty"`
	RenewalDate  string  `json:"renewal_date,omitempty"`
	CompanyID    string  `json:"company_id,omitempty"`
	Notes        string  `json:"notes,omitempty"`
	Active       bool    `json:"active"`
}

func (s *Subscription) Kind() int     { return KindSubscription }
func (s *Subscription) Meta() *Record { return &s.Record }

func (s *Subscription) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: subscription name is required", shared.ErrInvalidInput)
	}
	if s.Cost < 0 {
		return fmt.Errorf("%w: cost cannot be negative", shared.ErrInvalidInput)
	}
	switch s.BillingCycle {
	case "", CycleMonthly, CycleQuarterly, CycleYearly:
	default:
		return fmt.Errorf("%w: billing cycle must be monthly, quarterly, or yearly", shared.ErrInvalidInput)
	}
	return validOptionalDate(s.RenewalDate)
}
