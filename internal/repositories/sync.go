package repositories

import (
	"database/sql"
	"fmt"
)

// SyncStateRepository tracks the newest event timestamp seen per event kind,
// letting pulls request only events newer than the last sync.
type SyncStateRepository struct {
	db *sql.DB
}

// NewSyncStateRepository creates a new SyncStateRepository with the given database connection
func NewSyncStateRepository(db *sql.DB) *SyncStateRepository {
	return &SyncStateRepository{db: db}
}

// LastSync returns the unix timestamp of the newest event seen for kind,
// or zero when the kind has never been synced.
func (r *SyncStateRepository) LastSync(kind int) (int64, error) {
	var ts int64
	err := r.db.QueryRow("SELECT last_event_at FROM sync_state WHERE kind = ?", kind).Scan(&ts)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sync state: %w", err)
	}
	return ts, nil
}

// SetLastSync records ts as the newest event timestamp for kind. Older
// timestamps never overwrite newer ones.
func (r *SyncStateRepository) SetLastSync(kind int, ts int64) error {
	query := `
		INSERT INTO sync_state (kind, last_event_at)
		VALUES (?, ?)
		ON CONFLICT(kind) DO UPDATE SET last_event_at = excluded.last_event_at
		WHERE excluded.last_event_at > sync_state.last_event_at
	`
	if _, err := r.db.Exec(query, kind, ts); err != nil {
		return fmt.Errorf("failed to set sync state: %w", err)
	}
	return nil
}
