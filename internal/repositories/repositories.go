// package repositories provides persistence layer implementations for all model types.
//
// Each repository implements models.Repository[T] for a specific entity type,
// handling CRUD operations, soft deletes, and sequence generation against the
// local SQLite cache.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers provide stable human-readable ordering for entities. They
// are used for sorting, never exposed in output.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	_, err = tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable))
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	err = tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// prepareCreate assigns an ID when absent, stamps timestamps, and validates.
//
// Pull operations pass entities that already carry their remote ID; those are
// preserved so cache rows and event `d` tags stay aligned.
func prepareCreate(m models.Model) error {
	meta := m.Meta()
	if meta.ID == "" {
		meta.ID = shared.GenerateID()
	}
	now := time.Now()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if meta.UpdatedAt.IsZero() {
		meta.UpdatedAt = now
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// prepareUpdate validates and refreshes the modification timestamp.
func prepareUpdate(m models.Model) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	m.Meta().UpdatedAt = time.Now()
	return nil
}

// requireAffected converts a zero-rows-affected result into a not-found error.
func requireAffected(result sql.Result, table, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrEntityNotFound, table, id)
	}
	return nil
}

// softDelete marks a row deleted without removing it.
func softDelete(db *sql.DB, table, id string) error {
	query := fmt.Sprintf("UPDATE %s SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", table)
	result, err := db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	return requireAffected(result, table, id)
}

// Registry bundles every repository over one database handle.
type Registry struct {
	db *sql.DB

	Appliances    *ApplianceRepository
	Vehicles      *VehicleRepository
	Schedules     *ScheduleRepository
	Completions   *CompletionRepository
	Companies     *CompanyRepository
	Subscriptions *SubscriptionRepository
	Properties    *PropertyRepository
	Projects      *ProjectRepository
	Materials     *MaterialRepository
	Preferences   *PreferenceRepository
	Sync          *SyncStateRepository
}

// NewRegistry creates all repositories over the given database connection.
func NewRegistry(db *sql.DB) *Registry {
	return &Registry{
		db:            db,
		Appliances:    NewApplianceRepository(db),
		Vehicles:      NewVehicleRepository(db),
		Schedules:     NewScheduleRepository(db),
		Completions:   NewCompletionRepository(db),
		Companies:     NewCompanyRepository(db),
		Subscriptions: NewSubscriptionRepository(db),
		Properties:    NewPropertyRepository(db),
		Projects:      NewProjectRepository(db),
		Materials:     NewMaterialRepository(db),
		Preferences:   NewPreferenceRepository(db),
		Sync:          NewSyncStateRepository(db),
	}
}

// DB exposes the underlying handle for callers that need raw access.
func (r *Registry) DB() *sql.DB { return r.db }
