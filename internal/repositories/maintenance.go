package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/schedule"
	"github.com/hearthkeep/hearth/internal/shared"
)

// ScheduleRepository implements models.Repository[*models.MaintenanceSchedule].
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new ScheduleRepository with the given database connection
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, name, target_kind, target_id, frequency, frequency_unit,
	base_date, instructions, estimated_cost, created_at, updated_at`

// Create inserts a new maintenance schedule.
func (r *ScheduleRepository) Create(s *models.MaintenanceSchedule) error {
	if err := prepareCreate(s); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "maintenance_schedules")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO maintenance_schedules (id, sequence, name, target_kind, target_id,
			frequency, frequency_unit, base_date, instructions, estimated_cost,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		s.ID, sequence, s.Name, s.TargetKind, s.TargetID, s.Frequency,
		s.FrequencyUnit, s.BaseDate, s.Instructions, s.EstimatedCost,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	return nil
}

// Get retrieves a schedule by ID, excluding soft-deleted rows.
func (r *ScheduleRepository) Get(id string) (*models.MaintenanceSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM maintenance_schedules WHERE id = ? AND deleted_at IS NULL", scheduleColumns)
	s, err := scanSchedule(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: schedule %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}
	return s, nil
}

// Update modifies an existing schedule.
func (r *ScheduleRepository) Update(s *models.MaintenanceSchedule) error {
	if err := prepareUpdate(s); err != nil {
		return err
	}

	query := `
		UPDATE maintenance_schedules
		SET name = ?, target_kind = ?, target_id = ?, frequency = ?, frequency_unit = ?,
			base_date = ?, instructions = ?, estimated_cost = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		s.Name, s.TargetKind, s.TargetID, s.Frequency, s.FrequencyUnit,
		s.BaseDate, s.Instructions, s.EstimatedCost, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	return requireAffected(result, "schedule", s.ID)
}

// Delete soft-deletes a schedule by ID.
func (r *ScheduleRepository) Delete(id string) error {
	return softDelete(r.db, "maintenance_schedules", id)
}

// List retrieves schedules matching the given criteria.
//
// Supported criteria: target_kind, target_id.
func (r *ScheduleRepository) List(criteria map[string]any) ([]*models.MaintenanceSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM maintenance_schedules WHERE deleted_at IS NULL", scheduleColumns)
	args := []any{}

	if targetKind, ok := criteria["target_kind"].(string); ok && targetKind != "" {
		query += " AND target_kind = ?"
		args = append(args, targetKind)
	}
	if targetID, ok := criteria["target_id"].(string); ok && targetID != "" {
		query += " AND target_id = ?"
		args = append(args, targetID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.MaintenanceSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return schedules, nil
}

// DueItem pairs a schedule with its computed next due date and status.
type DueItem struct {
	Schedule      *models.MaintenanceSchedule
	LastCompleted string
	DueDate       time.Time
	Status        schedule.Status
}

// DueReport computes the next due date for every schedule against now,
// anchored on each schedule's most recent completion.
//
// Schedules with no usable anchor are reported with StatusUnknown.
func (r *ScheduleRepository) DueReport(now time.Time) ([]DueItem, error) {
	schedules, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	completions := NewCompletionRepository(r.db)

	items := make([]DueItem, 0, len(schedules))
	for _, s := range schedules {
		var last string
		if c, err := completions.Latest(s.ID); err == nil && c != nil {
			last = c.CompletedDate
		}

		due, ok := schedule.NextDueFromStrings(s.BaseDate, last, s.Frequency, s.FrequencyUnit)
		item := DueItem{Schedule: s, LastCompleted: last}
		if ok {
			item.DueDate = due
			item.Status = schedule.Classify(due, now)
		}
		items = append(items, item)
	}

	return items, nil
}

func scanSchedule(s rowScanner) (*models.MaintenanceSchedule, error) {
	var m models.MaintenanceSchedule
	err := s.Scan(
		&m.ID, &m.Name, &m.TargetKind, &m.TargetID, &m.Frequency, &m.FrequencyUnit,
		&m.BaseDate, &m.Instructions, &m.EstimatedCost, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CompletionRepository implements models.Repository[*models.MaintenanceCompletion].
type CompletionRepository struct {
	db *sql.DB
}

// NewCompletionRepository creates a new CompletionRepository with the given database connection
func NewCompletionRepository(db *sql.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

const completionColumns = `id, schedule_id, completed_date, cost, notes, receipt_url,
	created_at, updated_at`

// Create inserts a new completion record.
func (r *CompletionRepository) Create(c *models.MaintenanceCompletion) error {
	if err := prepareCreate(c); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "maintenance_completions")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO maintenance_completions (id, sequence, schedule_id, completed_date,
			cost, notes, receipt_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		c.ID, sequence, c.ScheduleID, c.CompletedDate, c.Cost, c.Notes,
		c.ReceiptURL, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}

	return nil
}

// Get retrieves a completion by ID, excluding soft-deleted rows.
func (r *CompletionRepository) Get(id string) (*models.MaintenanceCompletion, error) {
	query := fmt.Sprintf("SELECT %s FROM maintenance_completions WHERE id = ? AND deleted_at IS NULL", completionColumns)
	c, err := scanCompletion(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: completion %s", shared.ErrEntityNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan completion: %w", err)
	}
	return c, nil
}

// Update modifies an existing completion.
func (r *CompletionRepository) Update(c *models.MaintenanceCompletion) error {
	if err := prepareUpdate(c); err != nil {
		return err
	}

	query := `
		UPDATE maintenance_completions
		SET schedule_id = ?, completed_date = ?, cost = ?, notes = ?, receipt_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		c.ScheduleID, c.CompletedDate, c.Cost, c.Notes, c.ReceiptURL, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update completion: %w", err)
	}

	return requireAffected(result, "completion", c.ID)
}

// Delete soft-deletes a completion by ID.
func (r *CompletionRepository) Delete(id string) error {
	return softDelete(r.db, "maintenance_completions", id)
}

// List retrieves completions matching the given criteria.
//
// Supported criteria: schedule_id.
func (r *CompletionRepository) List(criteria map[string]any) ([]*models.MaintenanceCompletion, error) {
	query := fmt.Sprintf("SELECT %s FROM maintenance_completions WHERE deleted_at IS NULL", completionColumns)
	args := []any{}

	if scheduleID, ok := criteria["schedule_id"].(string); ok && scheduleID != "" {
		query += " AND schedule_id = ?"
		args = append(args, scheduleID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []*models.MaintenanceCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return completions, nil
}

// Latest returns the most recent completion for a schedule by completed date,
// or nil when the schedule has never been completed.
//
// completed_date is MM/DD/YYYY, so ordering happens in Go rather than SQL.
func (r *CompletionRepository) Latest(scheduleID string) (*models.MaintenanceCompletion, error) {
	completions, err := r.List(map[string]any{"schedule_id": scheduleID})
	if err != nil {
		return nil, err
	}

	var latest *models.MaintenanceCompletion
	var latestDate time.Time
	for _, c := range completions {
		d, err := schedule.ParseDate(c.CompletedDate)
		if err != nil {
			continue
		}
		if latest == nil || d.After(latestDate) {
			latest = c
			latestDate = d
		}
	}

	return latest, nil
}

func scanCompletion(s rowScanner) (*models.MaintenanceCompletion, error) {
	var c models.MaintenanceCompletion
	err := s.Scan(
		&c.ID, &c.ScheduleID, &c.CompletedDate, &c.Cost, &c.Notes, &c.ReceiptURL,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
