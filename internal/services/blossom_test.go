package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"

	"github.com/hearthkeep/hearth/internal/shared"
)

func newBlossomService(t *testing.T, servers ...string) *BlossomService {
	t.Helper()
	cfg := shared.DefaultConfig()
	cfg.Blossom.Servers = servers
	svc, err := NewBlossomService(cfg, nostr.GeneratePrivateKey(), http.DefaultClient, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewBlossomService failed: %v", err)
	}
	return svc
}

func decodeAuth(t *testing.T, header string) *nostr.Event {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Nostr "))
	if err != nil {
		t.Fatalf("failed to decode auth header: %v", err)
	}
	var evt nostr.Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		t.Fatalf("failed to unmarshal auth event: %v", err)
	}
	return &evt
}

func TestBlossomUpload(t *testing.T) {
	blob := []byte("receipt pdf bytes")
	hash := Hash(blob)

	t.Run("sends a signed auth event", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/upload" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}

			evt := decodeAuth(t, r.Header.Get("Authorization"))
			if evt.Kind != KindBlossomAuth {
				t.Errorf("auth kind = %d, want %d", evt.Kind, KindBlossomAuth)
			}
			if ok, _ := evt.CheckSignature(); !ok {
				t.Error("auth event signature invalid")
			}
			if v := evt.Tags.GetFirst([]string{"t"}); v == nil || v.Value() != "upload" {
				t.Error("auth event missing t=upload tag")
			}
			if v := evt.Tags.GetFirst([]string{"x"}); v == nil || v.Value() != hash {
				t.Error("auth event missing blob hash")
			}

			json.NewEncoder(w).Encode(BlobDescriptor{
				URL: "http://cdn.example/" + hash, SHA256: hash, Size: int64(len(blob)),
			})
		}))
		defer server.Close()

		svc := newBlossomService(t, server.URL)
		desc, err := svc.Upload(context.Background(), blob, "application/pdf")
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if desc.SHA256 != hash {
			t.Errorf("SHA256 = %s, want %s", desc.SHA256, hash)
		}
	})

	t.Run("falls back to the next server", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "storage full", http.StatusInsufficientStorage)
		}))
		defer bad.Close()
		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(BlobDescriptor{SHA256: hash, Size: int64(len(blob))})
		}))
		defer good.Close()

		svc := newBlossomService(t, bad.URL, good.URL)
		desc, err := svc.Upload(context.Background(), blob, "")
		if err != nil {
			t.Fatalf("Upload failed: %v", err)
		}
		if desc.SHA256 != hash {
			t.Errorf("SHA256 = %s, want %s", desc.SHA256, hash)
		}
	})

	t.Run("reports rejection when every server fails", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "no", http.StatusForbidden)
		}))
		defer bad.Close()

		svc := newBlossomService(t, bad.URL)
		_, err := svc.Upload(context.Background(), blob, "")
		if !errors.Is(err, shared.ErrUploadRejected) {
			t.Errorf("expected ErrUploadRejected, got %v", err)
		}
	})
}

func TestBlossomFetch(t *testing.T) {
	blob := []byte("washer manual")
	hash := Hash(blob)

	t.Run("falls through to a mirror", func(t *testing.T) {
		missing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer missing.Close()
		mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/"+hash {
				http.NotFound(w, r)
				return
			}
			w.Write(blob)
		}))
		defer mirror.Close()

		svc := newBlossomService(t, missing.URL, mirror.URL)
		data, err := svc.Fetch(context.Background(), hash)
		if err != nil {
			t.Fatalf("Fetch failed: %v", err)
		}
		if string(data) != string(blob) {
			t.Errorf("unexpected blob content: %q", data)
		}
	})

	t.Run("rejects a corrupted mirror", func(t *testing.T) {
		corrupt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("tampered bytes"))
		}))
		defer corrupt.Close()

		svc := newBlossomService(t, corrupt.URL)
		_, err := svc.Fetch(context.Background(), hash)
		if !errors.Is(err, shared.ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})

	t.Run("reports missing blobs", func(t *testing.T) {
		missing := httptest.NewServer(http.HandlerFunc(http.NotFound))
		defer missing.Close()

		svc := newBlossomService(t, missing.URL)
		_, err := svc.Fetch(context.Background(), hash)
		if !errors.Is(err, shared.ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})
}

func TestBlossomList(t *testing.T) {
	svc := newBlossomService(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/list/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]BlobDescriptor{{SHA256: "aa", Size: 10}, {SHA256: "bb", Size: 20}})
	}))
	defer server.Close()
	svc.servers = []string{server.URL}

	blobs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(blobs) != 2 {
		t.Errorf("blob count = %d, want 2", len(blobs))
	}
}

func TestBlossomDelete(t *testing.T) {
	hash := Hash([]byte("old receipt"))
	var gotAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		evt := decodeAuth(t, r.Header.Get("Authorization"))
		if v := evt.Tags.GetFirst([]string{"t"}); v != nil && v.Value() == "delete" {
			gotAuth = true
		}
	}))
	defer server.Close()

	svc := newBlossomService(t, server.URL)
	if err := svc.Delete(context.Background(), hash); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !gotAuth {
		t.Error("delete auth event missing t=delete tag")
	}
}

func TestBlossomNoServers(t *testing.T) {
	svc := newBlossomService(t)
	if _, err := svc.Upload(context.Background(), []byte("x"), ""); !errors.Is(err, shared.ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig, got %v", err)
	}
	if _, err := svc.Fetch(context.Background(), "abc"); !errors.Is(err, shared.ErrMissingConfig) {
		t.Errorf("expected ErrMissingConfig, got %v", err)
	}
}
