package tasks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	hearthtest "github.com/hearthkeep/hearth/internal/testing"
)

func TestBulkExport(t *testing.T) {
	engine, _, registry := setupEngine(t)

	blobHash1 := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	blobHash2 := "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	a := &models.Appliance{
		Name:       "Washer",
		ManualURL:  "https://blossom.example/" + blobHash1 + ".pdf",
		ReceiptURL: "https://blossom.example/" + blobHash2,
	}
	if err := registry.Appliances.Create(a); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("writes reports and manifest", func(t *testing.T) {
		dir := t.TempDir()
		result, err := engine.BulkExport(context.Background(), nil, BulkExportOpts{
			Format:    formatter.FormatCSV,
			OutputDir: dir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		hearthtest.AssertFileExists(t, filepath.Join(dir, "appliances.csv"))
		hearthtest.AssertFileExists(t, filepath.Join(dir, "maintenance_due.csv"))
		hearthtest.AssertFileExists(t, filepath.Join(dir, "snapshot.json"))
		hearthtest.AssertFileExists(t, filepath.Join(dir, "manifest.json"))

		if result.FailedCount != 0 {
			t.Errorf("FailedCount = %d, want 0", result.FailedCount)
		}
		content := hearthtest.MustReadFile(t, filepath.Join(dir, "appliances.csv"))
		if !strings.Contains(content, "Washer") {
			t.Error("appliance row missing from export")
		}
	})

	t.Run("downloads referenced attachments", func(t *testing.T) {
		dir := t.TempDir()
		fetched := map[string]bool{}
		result, err := engine.BulkExport(context.Background(), nil, BulkExportOpts{
			Format:    formatter.FormatJSON,
			OutputDir: dir,
			FetchBlob: func(ctx context.Context, hash string) ([]byte, error) {
				fetched[hash] = true
				return []byte("blob " + hash), nil
			},
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if !fetched[blobHash1] || !fetched[blobHash2] {
			t.Errorf("expected both blobs fetched, got %v", fetched)
		}
		if len(result.Attachments) != 2 {
			t.Fatalf("attachment count = %d, want 2", len(result.Attachments))
		}
		for _, att := range result.Attachments {
			if att.Error != "" {
				t.Errorf("attachment %s failed: %s", att.Hash, att.Error)
				continue
			}
			hearthtest.AssertFileExists(t, att.Path)
		}
	})

	t.Run("records attachment failures without aborting", func(t *testing.T) {
		dir := t.TempDir()
		result, err := engine.BulkExport(context.Background(), nil, BulkExportOpts{
			Format:    formatter.FormatJSON,
			OutputDir: dir,
			FetchBlob: func(ctx context.Context, hash string) ([]byte, error) {
				return nil, errors.New("server down")
			},
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.FailedCount != 2 {
			t.Errorf("FailedCount = %d, want 2", result.FailedCount)
		}
		hearthtest.AssertFileExists(t, filepath.Join(dir, "manifest.json"))
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		if _, err := engine.BulkExport(context.Background(), nil, BulkExportOpts{Format: "xml"}); err == nil {
			t.Error("expected error for unknown format")
		}
	})
}

func TestBlobHash(t *testing.T) {
	hash := "cccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccccc"

	cases := []struct {
		url  string
		want string
		ok   bool
	}{
		{"https://blossom.example/" + hash, hash, true},
		{"https://blossom.example/" + hash + ".jpg", hash, true},
		{"https://example.com/manuals/washer.pdf", "", false},
		{"", "", false},
		{"https://blossom.example/zzzz", "", false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("url=%q", tc.url), func(t *testing.T) {
			got, ok := blobHash(tc.url)
			if ok != tc.ok || got != tc.want {
				t.Errorf("blobHash(%q) = (%q, %v), want (%q, %v)", tc.url, got, ok, tc.want, tc.ok)
			}
		})
	}
}
