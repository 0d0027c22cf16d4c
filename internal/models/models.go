package models

import (
	"time"
)

// Nostr event kinds, one parameterized-replaceable kind per entity type.
// The `d` tag carries the entity ID.
const (
	KindAppliance             = 33101
	KindVehicle               = 33102
	KindMaintenanceSchedule   = 33103
	KindMaintenanceCompletion = 33104
	KindCompany               = 33105
	KindSubscription          = 33106
	KindProperty              = 33107
	KindProject               = 33108
	KindProjectMaterial       = 33109
)

// EntityKinds lists every entity kind in sync order.
var EntityKinds = []int{
	KindAppliance,
	KindVehicle,
	KindMaintenanceSchedule,
	KindMaintenanceCompletion,
	KindCompany,
	KindSubscription,
	KindProperty,
	KindProject,
	KindProjectMaterial,
}

// KindName returns a human-readable collection name for an entity kind.
func KindName(kind int) string {
	switch kind {
	case KindAppliance:
		return "appliances"
	case KindVehicle:
		return "vehicles"
	case KindMaintenanceSchedule:
		return "maintenance_schedules"
	case KindMaintenanceCompletion:
		return "maintenance_completions"
	case KindCompany:
		return "companies"
	case KindSubscription:
		return "subscriptions"
	case KindProperty:
		return "properties"
	case KindProject:
		return "projects"
	case KindProjectMaterial:
		return "project_materials"
	default:
		return ""
	}
}

// Record carries the persistence metadata shared by every entity.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the modification timestamp, setting the creation timestamp on
// first write.
func (r *Record) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Model defines the base interface for all persistent entities.
type Model interface {
	Validate() error // Validate checks form-level invariants before caching or publishing
	Kind() int       // Kind returns the Nostr event kind for this entity type
	Meta() *Record   // Meta exposes the shared persistence metadata
}

// Repository defines the interface for data access operations against the
// local cache. Implementations handle database interactions for one entity type.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new entity, generating an ID when absent
	Get(id string) (T, error)                  // Get retrieves an entity by its ID
	Update(model T) error                      // Update modifies an existing entity
	Delete(id string) error                    // Delete soft-deletes an entity by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves entities matching the given criteria
}
