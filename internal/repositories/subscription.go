package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// SubscriptionRepository implements models.Repository[*models.Subscription].
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository with the given database connection
func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, name, cost, billing_cycle, renewal_date, company_id,
	notes, active, created_at, updated_at`

// Create inserts a new subscription.
func (r *SubscriptionRepository) Create(s *models.Subscription) error {
	if err := prepareCreate(s); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "subscriptions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO subscriptions (id, sequence, name, cost, billing_cycle, renewal_date,
			company_id, notes, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		s.ID, sequence, s.Name, s.Cost, s.BillingCycle, s.RenewalDate,
		s.CompanyID, s.Notes, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	return nil
}

// Get retrieves a subscription by ID, excluding soft-deleted rows.
func (r *SubscriptionRepository) Get(id string) (*models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE id = ? AND deleted_at IS NULL", subscriptionColumns)
	s, err := scanSubscription(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: subscription %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return s, nil
}

// Update modifies an existing subscription.
func (r *SubscriptionRepository) Update(s *models.Subscription) error {
	if err := prepareUpdate(s); err != nil {
		return err
	}

	query := `
		UPDATE subscriptions
		SET name = ?, cost = ?, billing_cycle = ?, renewal_date = ?, company_id = ?,
			notes = ?, active = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		s.Name, s.Cost, s.BillingCycle, s.RenewalDate, s.CompanyID, s.Notes,
		s.Active, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return requireAffected(result, "subscription", s.ID)
}

// Delete soft-deletes a subscription by ID.
func (r *SubscriptionRepository) Delete(id string) error {
	return softDelete(r.db, "subscriptions", id)
}

// List retrieves subscriptions matching the given criteria.
//
// Supported criteria: company_id, active.
func (r *SubscriptionRepository) List(criteria map[string]any) ([]*models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE deleted_at IS NULL", subscriptionColumns)
	args := []any{}

	if companyID, ok := criteria["company_id"].(string); ok && companyID != "" {
		query += " AND company_id = ?"
		args = append(args, companyID)
	}
	if active, ok := criteria["active"].(bool); ok {
		query += " AND active = ?"
		args = append(args, active)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*models.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return subscriptions, nil
}

// MonthlyTotal sums active subscription costs normalized to a monthly amount.
func (r *SubscriptionRepository) MonthlyTotal() (float64, error) {
	subs, err := r.List(map[string]any{"active": true})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, s := range subs {
		switch s.BillingCycle {
		case models.CycleQuarterly:
			total += s.Cost / 3
		case models.CycleYearly:
			total += s.Cost / 12
		default:
			total += s.Cost
		}
	}

	return total, nil
}

func scanSubscription(s rowScanner) (*models.Subscription, error) {
	var m models.Subscription
	err := s.Scan(
		&m.ID, &m.Name, &m.Cost, &m.BillingCycle, &m.RenewalDate, &m.CompanyID,
		&m.Notes, &m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
