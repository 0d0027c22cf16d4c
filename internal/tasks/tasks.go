// package tasks implements the sync operations between the local cache and
// Nostr relays.
//
// The core abstraction is HomeEngine, which orchestrates pushes, pulls, relay
// checks, and exports. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/services"
	"github.com/hearthkeep/hearth/internal/shared"
)

// PushResult summarizes one push run.
type PushResult struct {
	Published int             // Entities accepted by at least one relay
	Failed    int             // Entities no relay accepted
	Kinds     map[int]int     // Published count per event kind
	Errors    []EntityFailure // Per-entity failure details
}

// PullResult summarizes one pull run.
type PullResult struct {
	Fetched int // Events retrieved from relays
	Created int // New cache rows
	Updated int // Overwritten cache rows
	Skipped int // Events that failed to decode or validate
	Deleted int // Cache rows removed by remote deletion events
}

// EntityFailure records one entity that could not be synced.
type EntityFailure struct {
	Kind  int
	ID    string
	Error string
}

// Snapshot is a point-in-time copy of every collection, used by exports and
// the read-only server.
type Snapshot struct {
	GeneratedAt   time.Time                      `json:"generated_at"`
	Appliances    []*models.Appliance            `json:"appliances"`
	Vehicles      []*models.Vehicle              `json:"vehicles"`
	Schedules     []*models.MaintenanceSchedule  `json:"maintenance_schedules"`
	Completions   []*models.MaintenanceCompletion `json:"maintenance_completions"`
	Companies     []*models.Company              `json:"companies"`
	Subscriptions []*models.Subscription         `json:"subscriptions"`
	Properties    []*models.Property             `json:"properties"`
	Projects      []*models.Project              `json:"projects"`
	Materials     []*models.ProjectMaterial      `json:"project_materials"`
	Due           []repositories.DueItem         `json:"due"`
}

// Engine defines the sync operations between the local cache and relays.
type Engine interface {
	// Push publishes every cached entity of the given kinds to the relays.
	// A nil kinds slice pushes everything.
	Push(ctx context.Context, progress chan<- ProgressUpdate, kinds []int) (*PushResult, error)

	// Pull fetches remote events newer than the last sync and merges them
	// into the cache, newest event per entity winning. Remote deletion
	// events tombstone their entities unless a newer event re-created them.
	Pull(ctx context.Context, progress chan<- ProgressUpdate, kinds []int) (*PullResult, error)

	// CheckRelays probes every configured relay concurrently.
	CheckRelays(ctx context.Context, progress chan<- ProgressUpdate) []services.RelayStatus

	// Snapshot reads every collection from the cache.
	Snapshot(now time.Time) (*Snapshot, error)
}

// HomeEngine implements Engine over an EventStore and the repository registry.
type HomeEngine struct {
	store    services.EventStore
	registry *repositories.Registry
	logger   *log.Logger
}

// NewHomeEngine creates a HomeEngine with the provided store and registry.
func NewHomeEngine(store services.EventStore, registry *repositories.Registry, logger *log.Logger) *HomeEngine {
	return &HomeEngine{
		store:    store,
		registry: registry,
		logger:   shared.WithLogger(logger, "component", "engine"),
	}
}

// sendProgress sends an update without blocking when no one is listening.
func (e *HomeEngine) sendProgress(progress chan<- ProgressUpdate, u ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- u:
	default:
	}
}

// Push publishes every cached entity of the given kinds.
func (e *HomeEngine) Push(ctx context.Context, progress chan<- ProgressUpdate, kinds []int) (*PushResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: relay store not initialized", shared.ErrServiceUnavailable)
	}
	if len(kinds) == 0 {
		kinds = models.EntityKinds
	}

	result := &PushResult{Kinds: map[int]int{}}

	for i, kind := range kinds {
		e.sendProgress(progress, update(Collect, i+1, len(kinds), "collecting %s", models.KindName(kind)))

		entities, err := e.localEntities(kind)
		if err != nil {
			return nil, err
		}

		for j, m := range entities {
			meta := m.Meta()
			e.sendProgress(progress, update(Publish, j+1, len(entities), "publishing %s %s", models.KindName(kind), meta.ID))

			payload, err := json.Marshal(m)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, EntityFailure{Kind: kind, ID: meta.ID, Error: err.Error()})
				continue
			}

			if _, err := e.store.PublishEntity(ctx, kind, meta.ID, payload); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, EntityFailure{Kind: kind, ID: meta.ID, Error: err.Error()})
				continue
			}

			result.Published++
			result.Kinds[kind]++
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	e.logger.Info("push complete", "published", result.Published, "failed", result.Failed)
	return result, nil
}

// Pull fetches remote events and merges them into the cache.
func (e *HomeEngine) Pull(ctx context.Context, progress chan<- ProgressUpdate, kinds []int) (*PullResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: relay store not initialized", shared.ErrServiceUnavailable)
	}
	if len(kinds) == 0 {
		kinds = models.EntityKinds
	}

	result := &PullResult{}

	e.sendProgress(progress, update(Fetch, 0, len(kinds), "fetching deletions"))
	deletedAt, newestDeletion, err := e.fetchDeletions(ctx)
	if err != nil {
		return nil, err
	}

	for i, kind := range kinds {
		e.sendProgress(progress, update(Fetch, i+1, len(kinds), "fetching %s", models.KindName(kind)))

		since, err := e.registry.Sync.LastSync(kind)
		if err != nil {
			return nil, err
		}

		records, err := e.store.FetchEntities(ctx, kind, since)
		if err != nil {
			return nil, err
		}
		result.Fetched += len(records)

		var newest int64
		for j, rec := range records {
			e.sendProgress(progress, update(Merge, j+1, len(records), "merging %s %s", models.KindName(kind), rec.ID))

			// A deletion at or after the event timestamp tombstones the
			// entity; a newer event means it was re-created afterwards.
			if ts, ok := deletedAt[kind][rec.ID]; ok {
				if ts >= rec.CreatedAt {
					if rec.CreatedAt > newest {
						newest = rec.CreatedAt
					}
					continue
				}
				delete(deletedAt[kind], rec.ID)
			}

			created, err := e.mergeRecord(kind, rec)
			if err != nil {
				e.logger.Warn("skipping unmergeable event", "kind", kind, "id", rec.ID, "error", err)
				result.Skipped++
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			if rec.CreatedAt > newest {
				newest = rec.CreatedAt
			}
		}

		if newest > 0 {
			if err := e.registry.Sync.SetLastSync(kind, newest); err != nil {
				return result, err
			}
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
	}

	// Tombstones with no newer event left standing remove the cached row.
	for kind, ids := range deletedAt {
		for id := range ids {
			err := e.removeLocal(kind, id)
			switch {
			case err == nil:
				result.Deleted++
			case errors.Is(err, shared.ErrEntityNotFound):
			default:
				e.logger.Warn("failed to apply remote deletion", "kind", kind, "id", id, "error", err)
			}
		}
	}
	if newestDeletion > 0 {
		if err := e.registry.Sync.SetLastSync(services.KindDeletion, newestDeletion); err != nil {
			return result, err
		}
	}

	e.logger.Info("pull complete", "fetched", result.Fetched, "created", result.Created, "updated", result.Updated, "skipped", result.Skipped, "deleted", result.Deleted)
	return result, nil
}

// fetchDeletions reads remote deletion events newer than the deletion cursor
// and indexes the newest tombstone timestamp per kind and entity ID. The
// second return is the newest deletion timestamp seen, for advancing the
// cursor after the tombstones are applied.
func (e *HomeEngine) fetchDeletions(ctx context.Context) (map[int]map[string]int64, int64, error) {
	since, err := e.registry.Sync.LastSync(services.KindDeletion)
	if err != nil {
		return nil, 0, err
	}
	deletions, err := e.store.FetchDeletions(ctx, since)
	if err != nil {
		return nil, 0, err
	}

	tombstones := map[int]map[string]int64{}
	var newest int64
	for _, d := range deletions {
		if tombstones[d.Kind] == nil {
			tombstones[d.Kind] = map[string]int64{}
		}
		if d.CreatedAt > tombstones[d.Kind][d.ID] {
			tombstones[d.Kind][d.ID] = d.CreatedAt
		}
		if d.CreatedAt > newest {
			newest = d.CreatedAt
		}
	}
	return tombstones, newest, nil
}

// removeLocal soft-deletes one cached entity by kind.
func (e *HomeEngine) removeLocal(kind int, id string) error {
	switch kind {
	case models.KindAppliance:
		return e.registry.Appliances.Delete(id)
	case models.KindVehicle:
		return e.registry.Vehicles.Delete(id)
	case models.KindMaintenanceSchedule:
		return e.registry.Schedules.Delete(id)
	case models.KindMaintenanceCompletion:
		return e.registry.Completions.Delete(id)
	case models.KindCompany:
		return e.registry.Companies.Delete(id)
	case models.KindSubscription:
		return e.registry.Subscriptions.Delete(id)
	case models.KindProperty:
		return e.registry.Properties.Delete(id)
	case models.KindProject:
		return e.registry.Projects.Delete(id)
	case models.KindProjectMaterial:
		return e.registry.Materials.Delete(id)
	default:
		return fmt.Errorf("%w: unknown entity kind %d", shared.ErrInvalidArgument, kind)
	}
}

// localEntities lists every cached entity of one kind as the Model interface.
func (e *HomeEngine) localEntities(kind int) ([]models.Model, error) {
	switch kind {
	case models.KindAppliance:
		return asModels(e.registry.Appliances.List(nil))
	case models.KindVehicle:
		return asModels(e.registry.Vehicles.List(nil))
	case models.KindMaintenanceSchedule:
		return asModels(e.registry.Schedules.List(nil))
	case models.KindMaintenanceCompletion:
		return asModels(e.registry.Completions.List(nil))
	case models.KindCompany:
		return asModels(e.registry.Companies.List(nil))
	case models.KindSubscription:
		return asModels(e.registry.Subscriptions.List(nil))
	case models.KindProperty:
		return asModels(e.registry.Properties.List(nil))
	case models.KindProject:
		return asModels(e.registry.Projects.List(nil))
	case models.KindProjectMaterial:
		return asModels(e.registry.Materials.List(nil))
	default:
		return nil, fmt.Errorf("%w: unknown entity kind %d", shared.ErrInvalidArgument, kind)
	}
}

func asModels[T models.Model](items []T, err error) ([]models.Model, error) {
	if err != nil {
		return nil, err
	}
	out := make([]models.Model, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out, nil
}

// mergeRecord upserts one remote record into the cache.
func (e *HomeEngine) mergeRecord(kind int, rec services.RemoteRecord) (created bool, err error) {
	switch kind {
	case models.KindAppliance:
		return mergeInto(e.registry.Appliances, rec, func() *models.Appliance { return &models.Appliance{} })
	case models.KindVehicle:
		return mergeInto(e.registry.Vehicles, rec, func() *models.Vehicle { return &models.Vehicle{} })
	case models.KindMaintenanceSchedule:
		return mergeInto(e.registry.Schedules, rec, func() *models.MaintenanceSchedule { return &models.MaintenanceSchedule{} })
	case models.KindMaintenanceCompletion:
		return mergeInto(e.registry.Completions, rec, func() *models.MaintenanceCompletion { return &models.MaintenanceCompletion{} })
	case models.KindCompany:
		return mergeInto(e.registry.Companies, rec, func() *models.Company { return &models.Company{} })
	case models.KindSubscription:
		return mergeInto(e.registry.Subscriptions, rec, func() *models.Subscription { return &models.Subscription{} })
	case models.KindProperty:
		return mergeInto(e.registry.Properties, rec, func() *models.Property { return &models.Property{} })
	case models.KindProject:
		return mergeInto(e.registry.Projects, rec, func() *models.Project { return &models.Project{} })
	case models.KindProjectMaterial:
		return mergeInto(e.registry.Materials, rec, func() *models.ProjectMaterial { return &models.ProjectMaterial{} })
	default:
		return false, fmt.Errorf("%w: unknown entity kind %d", shared.ErrInvalidArgument, kind)
	}
}

// mergeInto decodes the record payload and creates or updates the cache row.
// The event's d tag is authoritative for the entity ID.
func mergeInto[T models.Model](repo models.Repository[T], rec services.RemoteRecord, blank func() T) (bool, error) {
	m := blank()
	if err := json.Unmarshal(rec.Content, m); err != nil {
		return false, fmt.Errorf("failed to decode entity: %w", err)
	}
	m.Meta().ID = rec.ID

	_, err := repo.Get(rec.ID)
	switch {
	case err == nil:
		return false, repo.Update(m)
	case errors.Is(err, shared.ErrEntityNotFound):
		return true, repo.Create(m)
	default:
		return false, err
	}
}

// CheckRelays probes every configured relay concurrently.
func (e *HomeEngine) CheckRelays(ctx context.Context, progress chan<- ProgressUpdate) []services.RelayStatus {
	relays := e.store.Relays()
	statuses := make([]services.RelayStatus, len(relays))

	var wg sync.WaitGroup
	for i, url := range relays {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			e.sendProgress(progress, update(Probe, i+1, len(relays), "checking %s", url))
			statuses[i] = e.store.CheckRelay(ctx, url)
		}(i, url)
	}
	wg.Wait()

	return statuses
}

// Snapshot reads every collection from the cache, plus the computed due report.
func (e *HomeEngine) Snapshot(now time.Time) (*Snapshot, error) {
	s := &Snapshot{GeneratedAt: now}
	var err error

	if s.Appliances, err = e.registry.Appliances.List(nil); err != nil {
		return nil, err
	}
	if s.Vehicles, err = e.registry.Vehicles.List(nil); err != nil {
		return nil, err
	}
	if s.Schedules, err = e.registry.Schedules.List(nil); err != nil {
		return nil, err
	}
	if s.Completions, err = e.registry.Completions.List(nil); err != nil {
		return nil, err
	}
	if s.Companies, err = e.registry.Companies.List(nil); err != nil {
		return nil, err
	}
	if s.Subscriptions, err = e.registry.Subscriptions.List(nil); err != nil {
		return nil, err
	}
	if s.Properties, err = e.registry.Properties.List(nil); err != nil {
		return nil, err
	}
	if s.Projects, err = e.registry.Projects.List(nil); err != nil {
		return nil, err
	}
	if s.Materials, err = e.registry.Materials.List(nil); err != nil {
		return nil, err
	}
	if s.Due, err = e.registry.Schedules.DueReport(now); err != nil {
		return nil, err
	}

	return s, nil
}
