package main

import (
	"context"
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// relayCommand manages the relay list and connectivity checks.
func relayCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "relay",
		Usage: "Manage Nostr relays",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List configured relays",
				Action: r.RelayList,
			},
			{
				Name:  "add",
				Usage: "Add a relay URL to the config",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.RelayAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a relay URL from the config",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Action: r.RelayRemove,
			},
			{
				Name:   "check",
				Usage:  "Probe each configured relay for reachability",
				Flags:  []cli.Flag{passphraseFlag()},
				Action: r.RelayCheck,
			},
			{
				Name:   "publish-list",
				Usage:  "Publish the relay list so other clients can find your events",
				Flags:  []cli.Flag{passphraseFlag()},
				Action: r.RelayPublishList,
			},
		},
	}
}

// RelayList prints the configured relay URLs.
func (r *Runner) RelayList(ctx context.Context, cmd *cli.Command) error {
	if len(r.config.Relays.URLs) == 0 {
		r.writePlain("No relays configured. Add one with 'hearth relay add wss://...'\n")
		return nil
	}
	for _, url := range r.config.Relays.URLs {
		r.writePlain("%s\n", url)
	}
	return nil
}

// RelayAdd appends a relay URL to the config file. Duplicates are rejected.
func (r *Runner) RelayAdd(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: relay url", shared.ErrMissingArgument)
	}

	for _, existing := range r.config.Relays.URLs {
		if existing == url {
			return fmt.Errorf("%w: relay already configured: %s", shared.ErrInvalidArgument, url)
		}
	}

	r.config.Relays.URLs = append(r.config.Relays.URLs, url)
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.logger.Info("relay added", "url", url)
	r.writePlain("✓ Relay added: %s\n", url)
	return nil
}

// RelayRemove drops a relay URL from the config file.
func (r *Runner) RelayRemove(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: relay url", shared.ErrMissingArgument)
	}

	kept := make([]string, 0, len(r.config.Relays.URLs))
	found := false
	for _, existing := range r.config.Relays.URLs {
		if existing == url {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return fmt.Errorf("%w: relay not configured: %s", shared.ErrInvalidArgument, url)
	}

	r.config.Relays.URLs = kept
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}

	r.logger.Info("relay removed", "url", url)
	r.writePlain("✓ Relay removed: %s\n", url)
	return nil
}

// RelayCheck dials every configured relay and reports latency.
func (r *Runner) RelayCheck(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.homeEngine(cmd)
	if err != nil {
		return err
	}

	statuses := engine.CheckRelays(ctx, nil)
	for _, status := range statuses {
		if status.Reachable {
			r.writePlain("✓ %s (%s)\n", status.URL, status.Latency)
		} else {
			r.writePlain("✗ %s: %s\n", status.URL, status.Error)
		}
	}
	return nil
}

// RelayPublishList broadcasts a NIP-65 relay list event.
func (r *Runner) RelayPublishList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.eventStore(cmd)
	if err != nil {
		return err
	}

	results, err := store.PublishRelayList(ctx)
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.OK {
			r.writePlain("✓ %s\n", res.Relay)
		} else {
			r.writePlain("✗ %s: %s\n", res.Relay, res.Error)
		}
	}
	return nil
}
