package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip44"

	"github.com/hearthkeep/hearth/internal/shared"
)

func testConfig(relays []string, encrypted bool) *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Relays.URLs = relays
	cfg.Encryption.Enabled = encrypted
	return cfg
}

func TestNewRelayService(t *testing.T) {
	sk := nostr.GeneratePrivateKey()

	t.Run("derives the public key", func(t *testing.T) {
		svc, err := NewRelayService(testConfig([]string{"wss://relay.example"}, false), sk, shared.NewLogger(io.Discard))
		if err != nil {
			t.Fatalf("NewRelayService failed: %v", err)
		}
		pub, _ := nostr.GetPublicKey(sk)
		if svc.PublicKey() != pub {
			t.Errorf("PublicKey = %s, want %s", svc.PublicKey(), pub)
		}
		if svc.Encrypted() {
			t.Error("expected encryption disabled")
		}
		if svc.dial == nil {
			t.Error("expected a default relay dialer")
		}
	})

	t.Run("enables encryption from config", func(t *testing.T) {
		svc, err := NewRelayService(testConfig(nil, true), sk, shared.NewLogger(io.Discard))
		if err != nil {
			t.Fatalf("NewRelayService failed: %v", err)
		}
		if !svc.Encrypted() {
			t.Error("expected encryption enabled")
		}
	})

	t.Run("rejects a malformed key", func(t *testing.T) {
		_, err := NewRelayService(testConfig(nil, false), "not-a-key", shared.NewLogger(io.Discard))
		if !errors.Is(err, shared.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey, got %v", err)
		}
	})
}

func TestPublishEntityNoRelays(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	svc, err := NewRelayService(testConfig(nil, false), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}

	_, err = svc.PublishEntity(context.Background(), 33101, "abc", []byte(`{"name":"x"}`))
	if !errors.Is(err, shared.ErrNoRelays) {
		t.Errorf("expected ErrNoRelays, got %v", err)
	}
}

func TestBroadcastAllRelaysDown(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	svc, err := NewRelayService(testConfig([]string{"wss://a.example", "wss://b.example"}, false), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}
	svc.dial = func(ctx context.Context, url string) (*nostr.Relay, error) {
		return nil, fmt.Errorf("connection refused")
	}

	results, err := svc.PublishEntity(context.Background(), 33101, "abc", []byte(`{"name":"x"}`))
	if !errors.Is(err, shared.ErrPublishFailed) {
		t.Errorf("expected ErrPublishFailed, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.OK {
			t.Errorf("relay %s unexpectedly accepted", r.Relay)
		}
		if r.Error == "" {
			t.Errorf("relay %s missing error detail", r.Relay)
		}
	}
}

func TestDecodeContent(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	pub, _ := nostr.GetPublicKey(sk)

	encryptedSvc, err := NewRelayService(testConfig(nil, true), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}
	plainSvc, err := NewRelayService(testConfig(nil, false), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}

	t.Run("plaintext passes through", func(t *testing.T) {
		evt := &nostr.Event{Content: `{"name":"Dishwasher"}`}
		content, encrypted, err := encryptedSvc.decodeContent(evt)
		if err != nil {
			t.Fatalf("decodeContent failed: %v", err)
		}
		if encrypted {
			t.Error("plaintext flagged as encrypted")
		}
		if string(content) != `{"name":"Dishwasher"}` {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("encrypted content round trips", func(t *testing.T) {
		convKey, err := nip44.GenerateConversationKey(pub, sk)
		if err != nil {
			t.Fatalf("GenerateConversationKey failed: %v", err)
		}
		ciphertext, err := nip44.Encrypt(`{"name":"Dishwasher"}`, convKey)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		evt := &nostr.Event{Content: ciphertext}
		content, encrypted, err := encryptedSvc.decodeContent(evt)
		if err != nil {
			t.Fatalf("decodeContent failed: %v", err)
		}
		if !encrypted {
			t.Error("expected encrypted flag")
		}
		if string(content) != `{"name":"Dishwasher"}` {
			t.Errorf("unexpected content: %s", content)
		}
	})

	t.Run("encrypted content fails without a key", func(t *testing.T) {
		convKey, _ := nip44.GenerateConversationKey(pub, sk)
		ciphertext, _ := nip44.Encrypt(`{"name":"x"}`, convKey)

		_, _, err := plainSvc.decodeContent(&nostr.Event{Content: ciphertext})
		if !errors.Is(err, shared.ErrInvalidKey) {
			t.Errorf("expected ErrInvalidKey, got %v", err)
		}
	})
}

func TestNewerEvent(t *testing.T) {
	base := &nostr.Event{ID: "bb", CreatedAt: 100}

	t.Run("later timestamp wins", func(t *testing.T) {
		if !newerEvent(&nostr.Event{ID: "zz", CreatedAt: 200}, base) {
			t.Error("newer event should win")
		}
		if newerEvent(&nostr.Event{ID: "aa", CreatedAt: 50}, base) {
			t.Error("older event should lose")
		}
	})

	t.Run("equal timestamps tiebreak on the lowest event ID", func(t *testing.T) {
		if !newerEvent(&nostr.Event{ID: "aa", CreatedAt: 100}, base) {
			t.Error("lower event ID should win the tie")
		}
		if newerEvent(&nostr.Event{ID: "cc", CreatedAt: 100}, base) {
			t.Error("higher event ID should lose the tie")
		}
	})
}

func TestParseCoordinate(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	pub, _ := nostr.GetPublicKey(sk)
	svc, err := NewRelayService(testConfig(nil, false), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}

	t.Run("resolves own coordinates", func(t *testing.T) {
		kind, id, ok := svc.parseCoordinate(fmt.Sprintf("33101:%s:abc", pub))
		if !ok || kind != 33101 || id != "abc" {
			t.Errorf("parseCoordinate = %d, %q, %v", kind, id, ok)
		}
	})

	t.Run("rejects foreign and malformed coordinates", func(t *testing.T) {
		for _, c := range []string{"33101:otherpubkey:abc", "junk", "x:" + pub + ":abc", fmt.Sprintf("33101:%s:", pub)} {
			if _, _, ok := svc.parseCoordinate(c); ok {
				t.Errorf("coordinate %q unexpectedly accepted", c)
			}
		}
	})
}

func TestCheckRelayUnreachable(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	svc, err := NewRelayService(testConfig([]string{"wss://down.example"}, false), sk, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewRelayService failed: %v", err)
	}
	svc.dial = func(ctx context.Context, url string) (*nostr.Relay, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}

	status := svc.CheckRelay(context.Background(), "wss://down.example")
	if status.Reachable {
		t.Error("expected unreachable")
	}
	if status.Error == "" {
		t.Error("expected error detail")
	}
}
