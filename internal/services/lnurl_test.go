package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hearthkeep/hearth/internal/shared"
)

func TestLNURLResolve(t *testing.T) {
	t.Run("resolves a lightning address", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/.well-known/lnurlp/alice" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			json.NewEncoder(w).Encode(PayParams{
				Callback:    "https://pay.example/cb",
				MinSendable: 1000,
				MaxSendable: 100000000,
				Tag:         "payRequest",
			})
		}))
		defer server.Close()

		svc := NewLNURLService(server.Client())
		svc.AllowHTTP = true

		host := strings.TrimPrefix(server.URL, "http://")
		params, err := svc.Resolve(context.Background(), "alice@"+host)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if params.Callback != "https://pay.example/cb" {
			t.Errorf("Callback = %s", params.Callback)
		}
	})

	t.Run("rejects a malformed address", func(t *testing.T) {
		svc := NewLNURLService(nil)
		if _, err := svc.Resolve(context.Background(), "not-an-address"); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestLNURLRequestInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		amount := r.URL.Query().Get("amount")
		if amount != "21000" {
			t.Errorf("amount = %s, want 21000", amount)
		}
		json.NewEncoder(w).Encode(map[string]string{"pr": "lnbc210n1invoice"})
	}))
	defer server.Close()

	svc := NewLNURLService(server.Client())
	params := &PayParams{Callback: server.URL + "/cb", MinSendable: 1000, MaxSendable: 100000000}

	t.Run("returns the invoice", func(t *testing.T) {
		pr, err := svc.RequestInvoice(context.Background(), params, 21000)
		if err != nil {
			t.Fatalf("RequestInvoice failed: %v", err)
		}
		if pr != "lnbc210n1invoice" {
			t.Errorf("pr = %s", pr)
		}
	})

	t.Run("enforces sendable bounds", func(t *testing.T) {
		if _, err := svc.RequestInvoice(context.Background(), params, 10); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput below minimum, got %v", err)
		}
		if _, err := svc.RequestInvoice(context.Background(), params, 200000000); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput above maximum, got %v", err)
		}
	})

	t.Run("surfaces service errors", func(t *testing.T) {
		errServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"status": "ERROR", "reason": "node offline"})
		}))
		defer errServer.Close()

		bad := &PayParams{Callback: errServer.URL}
		_, err := svc.RequestInvoice(context.Background(), bad, 21000)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
		if !strings.Contains(err.Error(), "node offline") {
			t.Errorf("error missing reason: %v", err)
		}
	})
}

func TestLNURLCallbackPreservesQuery(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]string{"pr": "lnbc1"})
	}))
	defer server.Close()

	svc := NewLNURLService(server.Client())
	params := &PayParams{Callback: server.URL + "/cb?session=abc"}
	if _, err := svc.RequestInvoice(context.Background(), params, 5000); err != nil {
		t.Fatalf("RequestInvoice failed: %v", err)
	}
	if got.Get("session") != "abc" {
		t.Error("existing callback query params were dropped")
	}
}
