package services

import (
	"context"
	"time"
)

// RemoteRecord is one entity event fetched from relays. Content carries the
// entity JSON after any decryption.
type RemoteRecord struct {
	Kind      int
	ID        string // entity ID from the event's d tag
	Content   []byte
	CreatedAt int64
	Encrypted bool
}

// Deletion is one remote deletion event, resolved to the entity coordinate
// it addresses.
type Deletion struct {
	Kind      int
	ID        string
	CreatedAt int64
}

// PublishResult reports the outcome of sending one event to one relay.
type PublishResult struct {
	Relay string
	OK    bool
	Error string
}

// RelayStatus reports connectivity for one relay URL.
type RelayStatus struct {
	URL       string
	Reachable bool
	Latency   time.Duration
	Error     string
}

// EventStore defines the remote persistence surface for household entities.
// Relays are the source of truth; the local cache only mirrors them.
type EventStore interface {
	// PublishEntity writes one entity as a parameterized-replaceable event,
	// fanning out to every configured relay.
	PublishEntity(ctx context.Context, kind int, id string, payload []byte) ([]PublishResult, error)

	// FetchEntities retrieves the newest event per entity ID for a kind,
	// restricted to events newer than since (unix seconds, 0 for all).
	FetchEntities(ctx context.Context, kind int, since int64) ([]RemoteRecord, error)

	// FetchDeletions retrieves deletion events newer than since and resolves
	// the entity coordinates they address.
	FetchDeletions(ctx context.Context, since int64) ([]Deletion, error)

	// DeleteEntity publishes a deletion event addressing the entity.
	DeleteEntity(ctx context.Context, kind int, id string) ([]PublishResult, error)

	// PublishRelayList announces the configured relay set.
	PublishRelayList(ctx context.Context) ([]PublishResult, error)

	// CheckRelay probes one relay and reports reachability and latency.
	CheckRelay(ctx context.Context, url string) RelayStatus

	// Relays returns the configured relay URLs.
	Relays() []string

	// PublicKey returns the hex public key events are authored under.
	PublicKey() string
}
