package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/shared"
)

func setupCLIRunner(t *testing.T) (*Runner, *bytes.Buffer, *repositories.Registry) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	registry := repositories.NewRegistry(db)
	out := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Registry: registry,
		Output:   out,
		Logger:   shared.NewLogger(io.Discard),
	})
	return r, out, registry
}

func runCLI(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "hearth", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"hearth"}, args...))
}

func TestPrefs(t *testing.T) {
	r, out, registry := setupCLIRunner(t)

	t.Run("set and get round trip", func(t *testing.T) {
		if err := runCLI(t, r, "prefs", "set", "theme", "dark"); err != nil {
			t.Fatalf("prefs set failed: %v", err)
		}
		out.Reset()
		if err := runCLI(t, r, "prefs", "get", "theme"); err != nil {
			t.Fatalf("prefs get failed: %v", err)
		}
		if got := strings.TrimSpace(out.String()); got != "dark" {
			t.Errorf("prefs get = %q, want dark", got)
		}
	})

	t.Run("stored format applies when --format is absent", func(t *testing.T) {
		if err := registry.Appliances.Create(&models.Appliance{Name: "Dishwasher"}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := registry.Preferences.Set(prefFormat, formatter.FormatCSV); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		out.Reset()
		if err := runCLI(t, r, "appliance", "list"); err != nil {
			t.Fatalf("appliance list failed: %v", err)
		}
		if !strings.HasPrefix(out.String(), "ID,Name,") {
			t.Errorf("expected CSV output, got %q", out.String())
		}
	})

	t.Run("explicit --format overrides the stored preference", func(t *testing.T) {
		out.Reset()
		if err := runCLI(t, r, "appliance", "list", "--format", formatter.FormatMarkdown); err != nil {
			t.Fatalf("appliance list failed: %v", err)
		}
		if !strings.Contains(out.String(), "|") {
			t.Errorf("expected markdown output, got %q", out.String())
		}
	})

	t.Run("unset removes the key", func(t *testing.T) {
		if err := runCLI(t, r, "prefs", "unset", "theme"); err != nil {
			t.Fatalf("prefs unset failed: %v", err)
		}
		if err := runCLI(t, r, "prefs", "get", "theme"); err == nil {
			t.Error("expected an error for a removed preference")
		}
	})

	t.Run("set requires key and value", func(t *testing.T) {
		if err := runCLI(t, r, "prefs", "set", "orphan"); err == nil {
			t.Error("expected ErrMissingArgument")
		}
	})
}
