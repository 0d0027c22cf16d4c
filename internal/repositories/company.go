package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// CompanyRepository implements models.Repository[*models.Company].
type CompanyRepository struct {
	db *sql.DB
}

// NewCompanyRepository creates a new CompanyRepository with the given database connection
func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

const companyColumns = `id, name, category, phone, email, website, address, notes,
	created_at, updated_at`

// Create inserts a new company.
func (r *CompanyRepository) Create(c *models.Company) error {
	if err := prepareCreate(c); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "companies")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO companies (id, sequence, name, category, phone, email, website,
			address, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		c.ID, sequence, c.Name, c.Category, c.Phone, c.Email, c.Website,
		c.Address, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert company: %w", err)
	}

	return nil
}

// Get retrieves a company by ID, excluding soft-deleted rows.
func (r *CompanyRepository) Get(id string) (*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM companies WHERE id = ? AND deleted_at IS NULL", companyColumns)
	c, err := scanCompany(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: company %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan company: %w", err)
	}
	return c, nil
}

// Update modifies an existing company.
func (r *CompanyRepository) Update(c *models.Company) error {
	if err := prepareUpdate(c); err != nil {
		return err
	}

	query := `
		UPDATE companies
		SET name = ?, category = ?, phone = ?, email = ?, website = ?, address = ?,
			notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		c.Name, c.Category, c.Phone, c.Email, c.Website, c.Address, c.Notes,
		c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}

	return requireAffected(result, "company", c.ID)
}

// Delete soft-deletes a company by ID.
func (r *CompanyRepository) Delete(id string) error {
	return softDelete(r.db, "companies", id)
}

// List retrieves companies matching the given criteria.
//
// Supported criteria: category.
func (r *CompanyRepository) List(criteria map[string]any) ([]*models.Company, error) {
	query := fmt.Sprintf("SELECT %s FROM companies WHERE deleted_at IS NULL", companyColumns)
	args := []any{}

	if category, ok := criteria["category"].(string); ok && category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return companies, nil
}

func scanCompany(s rowScanner) (*models.Company, error) {
	var c models.Company
	err := s.Scan(
		&c.ID, &c.Name, &c.Category, &c.Phone, &c.Email, &c.Website, &c.Address,
		&c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
