package repositories

import (
	"database/sql"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// ProjectRepository implements models.Repository[*models.Project].
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new ProjectRepository with the given database connection
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, name, property_id, status, budget, notes,
	created_at, updated_at`

// Create inserts a new project.
func (r *ProjectRepository) Create(p *models.Project) error {
	if err := prepareCreate(p); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "projects")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO projects (id, sequence, name, property_id, status, budget,
			notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		p.ID, sequence, p.Name, p.PropertyID, p.Status, p.Budget,
		p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// Get retrieves a project by ID, excluding soft-deleted rows.
func (r *ProjectRepository) Get(id string) (*models.Project, error) {
	query := fmt.Sprintf("SELECT %s FROM projects WHERE id = ? AND deleted_at IS NULL", projectColumns)
	p, err := scanProject(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: project %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	return p, nil
}

// Update modifies an existing project.
func (r *ProjectRepository) Update(p *models.Project) error {
	if err := prepareUpdate(p); err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET name = ?, property_id = ?, status = ?, budget = ?, notes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		p.Name, p.PropertyID, p.Status, p.Budget, p.Notes, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return requireAffected(result, "project", p.ID)
}

// Delete soft-deletes a project by ID.
func (r *ProjectRepository) Delete(id string) error {
	return softDelete(r.db, "projects", id)
}

// List retrieves projects matching the given criteria.
//
// Supported criteria: property_id, status.
func (r *ProjectRepository) List(criteria map[string]any) ([]*models.Project, error) {
	query := fmt.Sprintf("SELECT %s FROM projects WHERE deleted_at IS NULL", projectColumns)
	args := []any{}

	if propertyID, ok := criteria["property_id"].(string); ok && propertyID != "" {
		query += " AND property_id = ?"
		args = append(args, propertyID)
	}
	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return projects, nil
}

func scanProject(s rowScanner) (*models.Project, error) {
	var p models.Project
	err := s.Scan(
		&p.ID, &p.Name, &p.PropertyID, &p.Status, &p.Budget, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MaterialRepository implements models.Repository[*models.ProjectMaterial].
type MaterialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new MaterialRepository with the given database connection
func NewMaterialRepository(db *sql.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

const materialColumns = `id, project_id, name, cost, quantity, company_id,
	receipt_url, created_at, updated_at`

// Create inserts a new project material.
func (r *MaterialRepository) Create(m *models.ProjectMaterial) error {
	if err := prepareCreate(m); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "project_materials")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO project_materials (id, sequence, project_id, name, cost, quantity,
			company_id, receipt_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		m.ID, sequence, m.ProjectID, m.Name, m.Cost, m.Quantity,
		m.CompanyID, m.ReceiptURL, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert material: %w", err)
	}

	return nil
}

// Get retrieves a material by ID, excluding soft-deleted rows.
func (r *MaterialRepository) Get(id string) (*models.ProjectMaterial, error) {
	query := fmt.Sprintf("SELECT %s FROM project_materials WHERE id = ? AND deleted_at IS NULL", materialColumns)
	m, err := scanMaterial(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: material %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan material: %w", err)
	}
	return m, nil
}

// Update modifies an existing material.
func (r *MaterialRepository) Update(m *models.ProjectMaterial) error {
	if err := prepareUpdate(m); err != nil {
		return err
	}

	query := `
		UPDATE project_materials
		SET project_id = ?, name = ?, cost = ?, quantity = ?, company_id = ?,
			receipt_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		m.ProjectID, m.Name, m.Cost, m.Quantity, m.CompanyID, m.ReceiptURL,
		m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}

	return requireAffected(result, "material", m.ID)
}

// Delete soft-deletes a material by ID.
func (r *MaterialRepository) Delete(id string) error {
	return softDelete(r.db, "project_materials", id)
}

// List retrieves materials matching the given criteria.
//
// Supported criteria: project_id.
func (r *MaterialRepository) List(criteria map[string]any) ([]*models.ProjectMaterial, error) {
	query := fmt.Sprintf("SELECT %s FROM project_materials WHERE deleted_at IS NULL", materialColumns)
	args := []any{}

	if projectID, ok := criteria["project_id"].(string); ok && projectID != "" {
		query += " AND project_id = ?"
		args = append(args, projectID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []*models.ProjectMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return materials, nil
}

// TotalCost sums cost times quantity across a project's materials.
func (r *MaterialRepository) TotalCost(projectID string) (float64, error) {
	var total sql.NullFloat64
	query := `
		SELECT SUM(cost * quantity) FROM project_materials
		WHERE project_id = ? AND deleted_at IS NULL
	`
	if err := r.db.QueryRow(query, projectID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum material costs: %w", err)
	}
	return total.Float64, nil
}

func scanMaterial(s rowScanner) (*models.ProjectMaterial, error) {
	var m models.ProjectMaterial
	err := s.Scan(
		&m.ID, &m.ProjectID, &m.Name, &m.Cost, &m.Quantity, &m.CompanyID,
		&m.ReceiptURL, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
