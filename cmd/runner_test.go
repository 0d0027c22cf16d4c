package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
	tu "github.com/hearthkeep/hearth/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			store := &tu.MockEventStore{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Store:      store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
			if runner.httpClient == nil {
				t.Error("expected default http client to be set")
			}
			if runner.lnurl == nil {
				t.Error("expected default lnurl service to be set")
			}
			if runner.configPath != "config.toml" {
				t.Errorf("expected default config path, got %q", runner.configPath)
			}
		})
	})

	t.Run("register returns every command group", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{
			"setup", "key", "appliance", "vehicle", "maintenance", "company",
			"subscription", "property", "project", "relay", "blossom", "sync",
			"backup", "prefs", "donate", "serve", "tui",
		}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("command %d: expected %q, got %q", i, name, commands[i].Name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes compact JSON with trailing newline", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"name": "Fridge"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}

			got := output.String()
			if got[len(got)-1] != '\n' {
				t.Error("expected trailing newline")
			}

			var decoded map[string]string
			if err := json.Unmarshal([]byte(got), &decoded); err != nil {
				t.Fatalf("output is not valid JSON: %v", err)
			}
			if decoded["name"] != "Fridge" {
				t.Errorf("expected name Fridge, got %q", decoded["name"])
			}
		})

		t.Run("pretty output is indented", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"name": "Fridge"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !bytes.Contains(output.Bytes(), []byte("\n  ")) {
				t.Error("expected indented output")
			}
		})

		t.Run("propagates writer errors", func(t *testing.T) {
			lw := tu.NewLimitedWriter(0, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &lw})

			if err := runner.writeJSON(map[string]string{"name": "Fridge"}, false); err == nil {
				t.Error("expected error from full writer")
			}
		})
	})

	t.Run("writePlain formats into the output writer", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlain("hello %s\n", "world")

		if output.String() != "hello world\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("writePlainln pads with newlines", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlainln("done")

		if output.String() != "\ndone\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})
}

func TestKindByName(t *testing.T) {
	t.Run("round trips every entity kind", func(t *testing.T) {
		for _, kind := range models.EntityKinds {
			name := models.KindName(kind)
			if got := kindByName(name); got != kind {
				t.Errorf("kindByName(%q) = %d, want %d", name, got, kind)
			}
		}
	})

	t.Run("unknown names return zero", func(t *testing.T) {
		if got := kindByName("widgets"); got != 0 {
			t.Errorf("expected 0 for unknown name, got %d", got)
		}
	})
}
