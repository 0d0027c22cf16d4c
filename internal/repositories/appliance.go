package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// ApplianceRepository implements models.Repository[*models.Appliance].
type ApplianceRepository struct {
	db *sql.DB
}

// NewApplianceRepository creates a new ApplianceRepository with the given database connection
func NewApplianceRepository(db *sql.DB) *ApplianceRepository {
	return &ApplianceRepository{db: db}
}

const applianceColumns = `id, name, brand, model, serial, purchase_date, purchase_price,
	warranty_expires, location, manual_url, receipt_url, notes, property_id,
	created_at, updated_at`

// Create inserts a new appliance, generating an ID and sequence when absent.
func (r *ApplianceRepository) Create(a *models.Appliance) error {
	if err := prepareCreate(a); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "appliances")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO appliances (id, sequence, name, brand, model, serial, purchase_date,
			purchase_price, warranty_expires, location, manual_url, receipt_url, notes,
			property_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		a.ID, sequence, a.Name, a.Brand, a.Model, a.Serial, a.PurchaseDate,
		a.PurchasePrice, a.WarrantyExpires, a.Location, a.ManualURL, a.ReceiptURL,
		a.Notes, a.PropertyID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appliance: %w", err)
	}

	return nil
}

// Get retrieves an appliance by ID, excluding soft-deleted rows.
func (r *ApplianceRepository) Get(id string) (*models.Appliance, error) {
	query := fmt.Sprintf("SELECT %s FROM appliances WHERE id = ? AND deleted_at IS NULL", applianceColumns)
	a, err := scanAppliance(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: appliance %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan appliance: %w", err)
	}
	return a, nil
}

// Update modifies an existing appliance.
func (r *ApplianceRepository) Update(a *models.Appliance) error {
	if err := prepareUpdate(a); err != nil {
		return err
	}

	query := `
		UPDATE appliances
		SET name = ?, brand = ?, model = ?, serial = ?, purchase_date = ?,
			purchase_price = ?, warranty_expires = ?, location = ?, manual_url = ?,
			receipt_url = ?, notes = ?, property_id = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		a.Name, a.Brand, a.Model, a.Serial, a.PurchaseDate, a.PurchasePrice,
		a.WarrantyExpires, a.Location, a.ManualURL, a.ReceiptURL, a.Notes,
		a.PropertyID, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appliance: %w", err)
	}

	return requireAffected(result, "appliance", a.ID)
}

// Delete soft-deletes an appliance by ID.
func (r *ApplianceRepository) Delete(id string) error {
	return softDelete(r.db, "appliances", id)
}

// List retrieves appliances matching the given criteria, excluding soft-deleted rows.
//
// Supported criteria: property_id, location.
func (r *ApplianceRepository) List(criteria map[string]any) ([]*models.Appliance, error) {
	query := fmt.Sprintf("SELECT %s FROM appliances WHERE deleted_at IS NULL", applianceColumns)
	args := []any{}

	if propertyID, ok := criteria["property_id"].(string); ok && propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	if location, ok := criteria["location"].(string); ok && location != "" {
		query += " AND location = ?"
		args = append(args, location)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appliances: %w", err)
	}
	defer rows.Close()

	var appliances []*models.Appliance
	for rows.Next() {
		a, err := scanAppliance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appliance: %w", err)
		}
		appliances = append(appliances, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return appliances, nil
}

func scanAppliance(s rowScanner) (*models.Appliance, error) {
	var a models.Appliance
	err := s.Scan(
		&a.ID, &a.Name, &a.Brand, &a.Model, &a.Serial, &a.PurchaseDate,
		&a.PurchasePrice, &a.WarrantyExpires, &a.Location, &a.ManualURL,
		&a.ReceiptURL, &a.Notes, &a.PropertyID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
