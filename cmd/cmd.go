// submodule cmd contains shared flag definitions and output helpers
package main

import (
	"context"
	"fmt"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

func passphraseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "passphrase",
		Aliases: []string{"p"},
		Usage:   "Keystore passphrase (falls back to HEARTH_PASSPHRASE)",
	}
}

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: txt, csv, markdown, json (or set a default with prefs set format)",
		Value:   formatter.FormatText,
	}
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output raw JSON",
	}
}

func prettyFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "pretty",
		Usage: "Pretty-print output",
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{Name: "id"},
	}
}

// requireIDArg reads the positional entity ID, erroring when absent.
func requireIDArg(cmd *cli.Command) (string, error) {
	id := cmd.StringArg("id")
	if id == "" {
		return "", fmt.Errorf("%w: entity id", shared.ErrMissingArgument)
	}
	return id, nil
}

// outputList writes a collection either as raw JSON (--json) or rendered
// through the formatter in the requested --format.
func (r *Runner) outputList(cmd *cli.Command, items any, report *formatter.Report) error {
	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	format := cmd.String("format")
	if !cmd.IsSet("format") {
		if stored, err := r.preference(prefFormat); err == nil && stored != "" {
			format = stored
		}
	}
	if format == "" {
		format = formatter.FormatText
	}
	if format == formatter.FormatJSON {
		return r.writeJSON(items, true)
	}

	rendered, err := formatter.Render(report, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(rendered); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func publishFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "publish",
		Usage: "Also publish a deletion event to the configured relays",
	}
}

// publishRemoval broadcasts a deletion event for an entity when --publish is
// set. Local removal already happened; a relay failure here is reported but
// does not undo it.
func (r *Runner) publishRemoval(ctx context.Context, cmd *cli.Command, kind int, id string) error {
	if !cmd.Bool("publish") {
		return nil
	}

	store, err := r.eventStore(cmd)
	if err != nil {
		return err
	}

	results, err := store.DeleteEntity(ctx, kind, id)
	if err != nil {
		return err
	}

	accepted := 0
	for _, res := range results {
		if res.OK {
			accepted++
		}
	}
	r.writePlain("  Deletion published to %d/%d relays\n", accepted, len(results))
	return nil
}

// kindByName maps a collection name (as printed by models.KindName) back to
// its entity kind. Returns 0 when the name is unknown.
func kindByName(name string) int {
	for _, kind := range models.EntityKinds {
		if models.KindName(kind) == name {
			return kind
		}
	}
	return 0
}
