// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/hearthkeep/hearth/internal/services"
)

// MockEventStore is a test double for [services.EventStore]. It records
// published events and serves canned fetch responses.
type MockEventStore struct {
	mu sync.Mutex

	RelayURLs       []string
	Pubkey          string
	FetchRecords    map[int][]services.RemoteRecord
	RemoteDeletions []services.Deletion
	PublishErr      error
	FetchErr        error

	Published []PublishedEvent
	Deleted   []DeletedEvent
	RelayList int
}

// PublishedEvent captures one PublishEntity call.
type PublishedEvent struct {
	Kind    int
	ID      string
	Payload []byte
}

// DeletedEvent captures one DeleteEntity call.
type DeletedEvent struct {
	Kind int
	ID   string
}

func (m *MockEventStore) PublishEntity(ctx context.Context, kind int, id string, payload []byte) ([]services.PublishResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return nil, m.PublishErr
	}
	m.Published = append(m.Published, PublishedEvent{Kind: kind, ID: id, Payload: payload})
	return []services.PublishResult{{Relay: "wss://mock.relay", OK: true}}, nil
}

func (m *MockEventStore) FetchEntities(ctx context.Context, kind int, since int64) ([]services.RemoteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var out []services.RemoteRecord
	for _, rec := range m.FetchRecords[kind] {
		if since == 0 || rec.CreatedAt > since {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockEventStore) FetchDeletions(ctx context.Context, since int64) ([]services.Deletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	var out []services.Deletion
	for _, d := range m.RemoteDeletions {
		if since == 0 || d.CreatedAt > since {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MockEventStore) DeleteEntity(ctx context.Context, kind int, id string) ([]services.PublishResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return nil, m.PublishErr
	}
	m.Deleted = append(m.Deleted, DeletedEvent{Kind: kind, ID: id})
	return []services.PublishResult{{Relay: "wss://mock.relay", OK: true}}, nil
}

func (m *MockEventStore) PublishRelayList(ctx context.Context) ([]services.PublishResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelayList++
	return []services.PublishResult{{Relay: "wss://mock.relay", OK: true}}, nil
}

func (m *MockEventStore) CheckRelay(ctx context.Context, url string) services.RelayStatus {
	return services.RelayStatus{URL: url, Reachable: true, Latency: time.Millisecond}
}

func (m *MockEventStore) Relays() []string {
	if len(m.RelayURLs) == 0 {
		return []string{"wss://mock.relay"}
	}
	return m.RelayURLs
}

func (m *MockEventStore) PublicKey() string {
	if m.Pubkey == "" {
		return "mockpubkey"
	}
	return m.Pubkey
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
