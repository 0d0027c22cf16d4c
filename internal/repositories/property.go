package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// PropertyRepository implements models.Repository[*models.Property].
type PropertyRepository struct {
	db *sql.DB
}

// NewPropertyRepository creates a new PropertyRepository with the given database connection
func NewPropertyRepository(db *sql.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, name, address, type, purchase_date, purchase_price,
	notes, created_at, updated_at`

// Create inserts a new property.
func (r *PropertyRepository) Create(p *models.Property) error {
	if err := prepareCreate(p); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "properties")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO properties (id, sequence, name, address, type, purchase_date,
			purchase_price, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		p.ID, sequence, p.Name, p.Address, p.Type, p.PurchaseDate,
		p.PurchasePrice, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}

	return nil
}

// Get retrieves a property by ID, excluding soft-deleted rows.
func (r *PropertyRepository) Get(id string) (*models.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE id = ? AND deleted_at IS NULL", propertyColumns)
	p, err := scanProperty(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: property %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return p, nil
}

// Update modifies an existing property.
func (r *PropertyRepository) Update(p *models.Property) error {
	if err := prepareUpdate(p); err != nil {
		return err
	}

	query := `
		UPDATE properties
		SET name = ?, address = ?, type = ?, purchase_date = ?, purchase_price = ?,
			notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		p.Name, p.Address, p.Type, p.PurchaseDate, p.PurchasePrice,
		p.Notes, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}

	return requireAffected(result, "property", p.ID)
}

// Delete soft-deletes a property by ID.
func (r *PropertyRepository) Delete(id string) error {
	return softDelete(r.db, "properties", id)
}

// List retrieves properties matching the given criteria.
//
// Supported criteria: type.
func (r *PropertyRepository) List(criteria map[string]any) ([]*models.Property, error) {
	query := fmt.Sprintf("SELECT %s FROM properties WHERE deleted_at IS NULL", propertyColumns)
	args := []any{}

	if propertyType, ok := criteria["type"].(string); ok && propertyType != "" {
		query += " AND type = ?"
		args = append(args, propertyType)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		properties = append(properties, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return properties, nil
}

func scanProperty(s rowScanner) (*models.Property, error) {
	var p models.Property
	err := s.Scan(
		&p.ID, &p.Name, &p.Address, &p.Type, &p.PurchaseDate,
		&p.PurchasePrice, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
