// Nostr relay implementation of [EventStore]
//
// Entities are stored as parameterized-replaceable events, one kind per
// entity type, with the entity ID in the `d` tag. Relays keep only the newest
// event per (pubkey, kind, d) so an update is simply a republish.
package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip44"

	"github.com/hearthkeep/hearth/internal/shared"
)

const (
	// KindDeletion is the NIP-09 deletion event kind.
	KindDeletion = 5
	// KindRelayList is the NIP-65 relay list event kind.
	KindRelayList = 10002

	defaultRelayTimeout = 10 * time.Second
)

// RelayService stores entities on Nostr relays, optionally encrypting event
// content to the user's own key.
type RelayService struct {
	relays  []string
	secret  string
	pubkey  string
	convKey *[32]byte // nil when encryption is disabled
	timeout time.Duration
	logger  *log.Logger

	// dial is swappable for tests.
	dial func(ctx context.Context, url string) (*nostr.Relay, error)
}

// NewRelayService builds a RelayService from config and a decrypted secret key.
//
// When encryption is enabled, event content is NIP-44 encrypted with the
// conversation key derived from the user's own keypair, so only the key
// holder can read it.
func NewRelayService(config *shared.Config, secretKey string, logger *log.Logger) (*RelayService, error) {
	pubkey, err := nostr.GetPublicKey(secretKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidKey, err)
	}

	s := &RelayService{
		relays:  config.Relays.URLs,
		secret:  secretKey,
		pubkey:  pubkey,
		timeout: defaultRelayTimeout,
		logger:  shared.WithLogger(logger, "service", "relay"),
		dial: func(ctx context.Context, url string) (*nostr.Relay, error) {
			return nostr.RelayConnect(ctx, url)
		},
	}

	if config.Relays.TimeoutSeconds > 0 {
		s.timeout = time.Duration(config.Relays.TimeoutSeconds) * time.Second
	}

	if config.Encryption.Enabled {
		convKey, err := nip44.GenerateConversationKey(pubkey, secretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to derive conversation key: %w", err)
		}
		s.convKey = &convKey
	}

	return s, nil
}

// Relays returns the configured relay URLs.
func (s *RelayService) Relays() []string { return s.relays }

// PublicKey returns the hex public key events are authored under.
func (s *RelayService) PublicKey() string { return s.pubkey }

// Encrypted reports whether event content is NIP-44 encrypted before publish.
func (s *RelayService) Encrypted() bool { return s.convKey != nil }

// PublishEntity writes one entity event and fans it out to every relay.
func (s *RelayService) PublishEntity(ctx context.Context, kind int, id string, payload []byte) ([]PublishResult, error) {
	content := string(payload)
	tags := nostr.Tags{{"d", id}}

	if s.convKey != nil {
		ciphertext, err := nip44.Encrypt(content, *s.convKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt content: %w", err)
		}
		content = ciphertext
		tags = append(tags, nostr.Tag{"encrypted", "nip44"})
	}

	evt := nostr.Event{
		PubKey:    s.pubkey,
		CreatedAt: nostr.Now(),
		Kind:      kind,
		Tags:      tags,
		Content:   content,
	}
	if err := evt.Sign(s.secret); err != nil {
		return nil, fmt.Errorf("failed to sign event: %w", err)
	}

	return s.broadcast(ctx, &evt)
}

// DeleteEntity publishes a deletion event addressing the entity by its
// replaceable-event coordinate. Relays that honor deletions drop the entity
// event; the local cache row is removed separately.
func (s *RelayService) DeleteEntity(ctx context.Context, kind int, id string) ([]PublishResult, error) {
	coordinate := fmt.Sprintf("%d:%s:%s", kind, s.pubkey, id)

	evt := nostr.Event{
		PubKey:    s.pubkey,
		CreatedAt: nostr.Now(),
		Kind:      KindDeletion,
		Tags:      nostr.Tags{{"a", coordinate}},
	}
	if err := evt.Sign(s.secret); err != nil {
		return nil, fmt.Errorf("failed to sign deletion: %w", err)
	}

	return s.broadcast(ctx, &evt)
}

// PublishRelayList announces the configured relay set as a NIP-65 list so
// other clients can find where the user's data lives.
func (s *RelayService) PublishRelayList(ctx context.Context) ([]PublishResult, error) {
	tags := make(nostr.Tags, 0, len(s.relays))
	for _, url := range s.relays {
		tags = append(tags, nostr.Tag{"r", url})
	}

	evt := nostr.Event{
		PubKey:    s.pubkey,
		CreatedAt: nostr.Now(),
		Kind:      KindRelayList,
		Tags:      tags,
	}
	if err := evt.Sign(s.secret); err != nil {
		return nil, fmt.Errorf("failed to sign relay list: %w", err)
	}

	return s.broadcast(ctx, &evt)
}

// broadcast sends a signed event to every relay concurrently. It succeeds if
// at least one relay accepts the event.
func (s *RelayService) broadcast(ctx context.Context, evt *nostr.Event) ([]PublishResult, error) {
	if len(s.relays) == 0 {
		return nil, shared.ErrNoRelays
	}

	results := make([]PublishResult, len(s.relays))
	var wg sync.WaitGroup

	for i, url := range s.relays {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			results[i] = s.publishTo(ctx, url, evt)
		}(i, url)
	}
	wg.Wait()

	accepted := 0
	for _, r := range results {
		if r.OK {
			accepted++
		} else {
			s.logger.Warn("relay rejected event", "relay", r.Relay, "error", r.Error)
		}
	}
	if accepted == 0 {
		return results, fmt.Errorf("%w: no relay accepted event kind %d", shared.ErrPublishFailed, evt.Kind)
	}

	s.logger.Debug("event published", "kind", evt.Kind, "accepted", accepted, "relays", len(s.relays))
	return results, nil
}

func (s *RelayService) publishTo(ctx context.Context, url string, evt *nostr.Event) PublishResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	relay, err := s.dial(ctx, url)
	if err != nil {
		return PublishResult{Relay: url, Error: err.Error()}
	}
	defer relay.Close()

	if err := relay.Publish(ctx, *evt); err != nil {
		return PublishResult{Relay: url, Error: err.Error()}
	}
	return PublishResult{Relay: url, OK: true}
}

// FetchEntities retrieves the newest event per entity ID for a kind from all
// relays, merged so the latest timestamp wins across relays.
func (s *RelayService) FetchEntities(ctx context.Context, kind int, since int64) ([]RemoteRecord, error) {
	if len(s.relays) == 0 {
		return nil, shared.ErrNoRelays
	}

	filter := nostr.Filter{
		Kinds:   []int{kind},
		Authors: []string{s.pubkey},
	}
	if since > 0 {
		ts := nostr.Timestamp(since)
		filter.Since = &ts
	}

	var (
		mu     sync.Mutex
		newest = map[string]*nostr.Event{}
		errs   []string
		wg     sync.WaitGroup
	)

	for _, url := range s.relays {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			events, err := s.fetchFrom(ctx, url, filter)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", url, err))
				return
			}
			for _, evt := range events {
				id := evt.Tags.GetD()
				if id == "" {
					continue
				}
				if existing, ok := newest[id]; !ok || newerEvent(evt, existing) {
					newest[id] = evt
				}
			}
		}(url)
	}
	wg.Wait()

	if len(newest) == 0 && len(errs) == len(s.relays) {
		return nil, fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, strings.Join(errs, "; "))
	}

	records := make([]RemoteRecord, 0, len(newest))
	for id, evt := range newest {
		content, encrypted, err := s.decodeContent(evt)
		if err != nil {
			s.logger.Warn("skipping undecodable event", "kind", kind, "id", id, "error", err)
			continue
		}
		records = append(records, RemoteRecord{
			Kind:      kind,
			ID:        id,
			Content:   content,
			CreatedAt: int64(evt.CreatedAt),
			Encrypted: encrypted,
		})
	}

	s.logger.Debug("entities fetched", "kind", kind, "count", len(records))
	return records, nil
}

// FetchDeletions retrieves the user's deletion events from all relays and
// resolves the replaceable-event coordinates they address. Coordinates
// authored by other keys are dropped.
func (s *RelayService) FetchDeletions(ctx context.Context, since int64) ([]Deletion, error) {
	if len(s.relays) == 0 {
		return nil, shared.ErrNoRelays
	}

	filter := nostr.Filter{
		Kinds:   []int{KindDeletion},
		Authors: []string{s.pubkey},
	}
	if since > 0 {
		ts := nostr.Timestamp(since)
		filter.Since = &ts
	}

	var (
		mu     sync.Mutex
		newest = map[string]int64{} // coordinate to newest deletion timestamp
		errs   []string
		wg     sync.WaitGroup
	)

	for _, url := range s.relays {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			events, err := s.fetchFrom(ctx, url, filter)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", url, err))
				return
			}
			for _, evt := range events {
				for _, tag := range evt.Tags.GetAll([]string{"a"}) {
					if len(tag) < 2 {
						continue
					}
					if ts := int64(evt.CreatedAt); ts > newest[tag[1]] {
						newest[tag[1]] = ts
					}
				}
			}
		}(url)
	}
	wg.Wait()

	if len(newest) == 0 && len(errs) == len(s.relays) {
		return nil, fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, strings.Join(errs, "; "))
	}

	deletions := make([]Deletion, 0, len(newest))
	for coordinate, ts := range newest {
		kind, id, ok := s.parseCoordinate(coordinate)
		if !ok {
			s.logger.Warn("skipping malformed deletion coordinate", "coordinate", coordinate)
			continue
		}
		deletions = append(deletions, Deletion{Kind: kind, ID: id, CreatedAt: ts})
	}

	s.logger.Debug("deletions fetched", "count", len(deletions))
	return deletions, nil
}

// parseCoordinate splits a kind:pubkey:d coordinate, rejecting coordinates
// signed over another author's entities.
func (s *RelayService) parseCoordinate(coordinate string) (int, string, bool) {
	parts := strings.SplitN(coordinate, ":", 3)
	if len(parts) != 3 || parts[1] != s.pubkey || parts[2] == "" {
		return 0, "", false
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	return kind, parts[2], true
}

// newerEvent reports whether a should replace b. Timestamps decide; on a tie
// the lexically lowest event ID wins, so every relay converges on the same
// event.
func newerEvent(a, b *nostr.Event) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID < b.ID
}

func (s *RelayService) fetchFrom(ctx context.Context, url string, filter nostr.Filter) ([]*nostr.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	relay, err := s.dial(ctx, url)
	if err != nil {
		return nil, err
	}
	defer relay.Close()

	sub, err := relay.Subscribe(ctx, nostr.Filters{filter})
	if err != nil {
		return nil, err
	}
	defer sub.Unsub()

	var events []*nostr.Event
	for {
		select {
		case evt, ok := <-sub.Events:
			if !ok {
				return events, nil
			}
			events = append(events, evt)
		case <-sub.EndOfStoredEvents:
			return events, nil
		case <-ctx.Done():
			return events, ctx.Err()
		}
	}
}

// decodeContent returns the plaintext entity JSON for an event, decrypting
// NIP-44 content when needed. Plaintext events from other clients are
// accepted even when local encryption is enabled.
func (s *RelayService) decodeContent(evt *nostr.Event) ([]byte, bool, error) {
	content := strings.TrimSpace(evt.Content)
	if strings.HasPrefix(content, "{") {
		return []byte(content), false, nil
	}

	if s.convKey == nil {
		return nil, false, fmt.Errorf("%w: event content is encrypted and encryption is disabled", shared.ErrInvalidKey)
	}

	plaintext, err := nip44.Decrypt(content, *s.convKey)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decrypt content: %w", err)
	}
	return []byte(plaintext), true, nil
}

// CheckRelay probes one relay and reports reachability and round-trip latency.
func (s *RelayService) CheckRelay(ctx context.Context, url string) RelayStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	relay, err := s.dial(ctx, url)
	if err != nil {
		return RelayStatus{URL: url, Error: err.Error()}
	}
	defer relay.Close()

	return RelayStatus{URL: url, Reachable: true, Latency: time.Since(start)}
}
