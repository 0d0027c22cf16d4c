package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// VehicleRepository implements models.Repository[*models.Vehicle].
type VehicleRepository struct {
	db *sql.DB
}

// NewVehicleRepository creates a new VehicleRepository with the given database connection
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

const vehicleColumns = `id, name, make, model, year, vin, plate, purchase_date,
	purchase_price, odometer, notes, created_at, updated_at`

// Create inserts a new vehicle, generating an ID and sequence when absent.
func (r *VehicleRepository) Create(v *models.Vehicle) error {
	if err := prepareCreate(v); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "vehicles")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO vehicles (id, sequence, name, make, model, year, vin, plate,
			purchase_date, purchase_price, odometer, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		v.ID, sequence, v.Name, v.Make, v.Model, v.Year, v.VIN, v.Plate,
		v.PurchaseDate, v.PurchasePrice, v.Odometer, v.Notes, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle: %w", err)
	}

	return nil
}

// Get retrieves a vehicle by ID, excluding soft-deleted rows.
func (r *VehicleRepository) Get(id string) (*models.Vehicle, error) {
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE id = ? AND deleted_at IS NULL", vehicleColumns)
	v, err := scanVehicle(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vehicle %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan vehicle: %w", err)
	}
	return v, nil
}

// Update modifies an existing vehicle.
func (r *VehicleRepository) Update(v *models.Vehicle) error {
	if err := prepareUpdate(v); err != nil {
		return err
	}

	query := `
		UPDATE vehicles
		SET name = ?, make = ?, model = ?, year = ?, vin = ?, plate = ?,
			purchase_date = ?, purchase_price = ?, odometer = ?, notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		v.Name, v.Make, v.Model, v.Year, v.VIN, v.Plate, v.PurchaseDate,
		v.PurchasePrice, v.Odometer, v.Notes, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}

	return requireAffected(result, "vehicle", v.ID)
}

// Delete soft-deletes a vehicle by ID.
func (r *VehicleRepository) Delete(id string) error {
	return softDelete(r.db, "vehicles", id)
}

// List retrieves vehicles matching the given criteria.
//
// Supported criteria: make.
func (r *VehicleRepository) List(criteria map[string]any) ([]*models.Vehicle, error) {
	query := fmt.Sprintf("SELECT %s FROM vehicles WHERE deleted_at IS NULL", vehicleColumns)
	args := []any{}

	if make, ok := criteria["make"].(string); ok && make != "" {
		query += " AND make = ?"
		args = append(args, make)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return vehicles, nil
}

func scanVehicle(s rowScanner) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.Scan(
		&v.ID, &v.Name, &v.Make, &v.Model, &v.Year, &v.VIN, &v.Plate,
		&v.PurchaseDate, &v.PurchasePrice, &v.Odometer, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
