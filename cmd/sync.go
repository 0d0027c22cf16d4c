package main

import (
	"context"
	"fmt"

	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/hearthkeep/hearth/internal/tasks"
	"github.com/urfave/cli/v3"
)

// syncCommand pushes local entities to the relays and pulls remote state back.
func syncCommand(r *Runner) *cli.Command {
	onlyFlag := &cli.StringFlag{
		Name:  "only",
		Usage: "Sync a single collection (appliances, vehicles, ...)",
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Synchronize the local cache with the configured relays",
		Commands: []*cli.Command{
			{
				Name:   "push",
				Usage:  "Publish local entities as replaceable events",
				Flags:  []cli.Flag{onlyFlag, passphraseFlag()},
				Action: r.SyncPush,
			},
			{
				Name:   "pull",
				Usage:  "Fetch remote events newer than the last sync and merge them",
				Flags:  []cli.Flag{onlyFlag, passphraseFlag()},
				Action: r.SyncPull,
			},
		},
	}
}

// syncKinds resolves the --only flag into a kind filter. Nil means every
// collection.
func syncKinds(cmd *cli.Command) ([]int, error) {
	only := cmd.String("only")
	if only == "" {
		return nil, nil
	}
	kind := kindByName(only)
	if kind == 0 {
		return nil, fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidFlag, only)
	}
	return []int{kind}, nil
}

// watchProgress streams sync progress to the output until the channel closes.
func (r *Runner) watchProgress(progress <-chan tasks.ProgressUpdate, done chan<- struct{}) {
	for update := range progress {
		switch update.Phase {
		case tasks.Collect:
			r.writePlain("📦 %s\n", update.Message)
		case tasks.Publish:
			r.writePlain("📤 %s\n", update.Message)
		case tasks.Fetch:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.Merge:
			r.writePlain("   %s\n", update.Message)
		}
	}
	close(done)
}

// SyncPush publishes every local entity (or one collection with --only) to
// the relays.
func (r *Runner) SyncPush(ctx context.Context, cmd *cli.Command) error {
	kinds, err := syncKinds(cmd)
	if err != nil {
		return err
	}

	engine, err := r.homeEngine(cmd)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.watchProgress(progress, done)

	result, err := engine.Push(ctx, progress, kinds)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Push Complete")
	r.writePlain("Published: %d\n", result.Published)
	if result.Failed > 0 {
		r.writePlain("Failed: %d\n", result.Failed)
		for _, failure := range result.Errors {
			r.writePlain("  ✗ %s %s: %s\n", models.KindName(failure.Kind), failure.ID, failure.Error)
		}
	}
	return nil
}

// SyncPull fetches remote events newer than the stored cursor and merges them
// into the local cache.
func (r *Runner) SyncPull(ctx context.Context, cmd *cli.Command) error {
	kinds, err := syncKinds(cmd)
	if err != nil {
		return err
	}

	engine, err := r.homeEngine(cmd)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.watchProgress(progress, done)

	result, err := engine.Pull(ctx, progress, kinds)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Pull Complete")
	r.writePlain("Fetched: %d\n", result.Fetched)
	r.writePlain("Created: %d  Updated: %d  Deleted: %d  Skipped: %d\n", result.Created, result.Updated, result.Deleted, result.Skipped)
	return nil
}
