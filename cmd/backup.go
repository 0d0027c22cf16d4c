package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/tasks"
	"github.com/urfave/cli/v3"
)

// backupCommand exports every collection to local files.
func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "backup",
		Aliases: []string{"export"},
		Usage:   "Export all household data to local files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv, markdown, txt",
				Value:   formatter.FormatJSON,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (defaults to hearth_export_{timestamp})",
			},
			&cli.BoolFlag{
				Name:  "attachments",
				Usage: "Also download referenced manuals and receipts from Blossom",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent attachment downloads",
				Value: 5,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Attachment requests per second",
				Value: 5,
			},
			passphraseFlag(),
		},
		Action: r.Backup,
	}
}

// Backup writes every collection, the due report, and a full snapshot to the
// output directory. With --attachments it also downloads referenced blobs
// through a bounded worker pool.
func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	if cmd.Bool("attachments") {
		blossom, err := r.blossomService(cmd)
		if err != nil {
			return err
		}
		opts.FetchBlob = blossom.Fetch
	}

	// Exports read only the local cache, so no relay connection is needed.
	engine := r.engine
	if engine == nil {
		engine = tasks.NewHomeEngine(nil, registry, r.logger)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		for update := range progress {
			switch update.Phase {
			case tasks.Export:
				r.writePlain("📄 %s\n", update.Message)
			case tasks.Attachments:
				r.writePlain("📎 %s\n", update.Message)
			}
		}
		close(done)
	}()

	result, err := engine.BulkExport(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Files: %d\n", len(result.Files))
	if len(result.Attachments) > 0 {
		r.writePlain("Attachments: %d fetched, %d failed\n", result.SuccessCount, result.FailedCount)
	}
	return nil
}
