package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// prefFormat stores the default output format used when --format is not given.
const prefFormat = "format"

// prefsCommand manages stored key/value preferences.
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Manage stored preferences (e.g. the default output format)",
		Commands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Store a preference value",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.PrefsSet,
			},
			{
				Name:      "get",
				Usage:     "Print one preference value",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Action:    r.PrefsGet,
			},
			{
				Name:   "list",
				Usage:  "Print every stored preference",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag()},
				Action: r.PrefsList,
			},
			{
				Name:      "unset",
				Usage:     "Remove a preference",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Action:    r.PrefsUnset,
			},
		},
	}
}

// preference reads one stored preference, returning "" when it was never set.
func (r *Runner) preference(key string) (string, error) {
	registry, err := r.openRegistry()
	if err != nil {
		return "", err
	}
	value, err := registry.Preferences.Get(key)
	if errors.Is(err, shared.ErrEntityNotFound) {
		return "", nil
	}
	return value, err
}

func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	key, value := cmd.StringArg("key"), cmd.StringArg("value")
	if key == "" || value == "" {
		return fmt.Errorf("%w: key and value", shared.ErrMissingArgument)
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}
	if err := registry.Preferences.Set(key, value); err != nil {
		return err
	}
	r.writePlain("✓ %s = %s\n", key, value)
	return nil
}

func (r *Runner) PrefsGet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}
	value, err := registry.Preferences.Get(key)
	if err != nil {
		return err
	}
	r.writePlainln("%s", value)
	return nil
}

func (r *Runner) PrefsList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}
	prefs, err := registry.Preferences.All()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(prefs, cmd.Bool("pretty"))
	}
	for key, value := range prefs {
		r.writePlain("%s = %s\n", key, value)
	}
	return nil
}

func (r *Runner) PrefsUnset(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key", shared.ErrMissingArgument)
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}
	if err := registry.Preferences.Delete(key); err != nil {
		return err
	}
	r.writePlain("✓ %s removed\n", key)
	return nil
}
