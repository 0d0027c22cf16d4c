package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// blossomCommand manages file attachments on Blossom media servers.
func blossomCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "blossom",
		Usage: "Store manuals and receipts on Blossom servers",
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a file and print its blob URL",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mime", Usage: "MIME type override"},
					passphraseFlag(),
				},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.BlossomUpload,
			},
			{
				Name:  "get",
				Usage: "Download a blob by hash",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file path"},
					passphraseFlag(),
				},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "hash"},
				},
				Action: r.BlossomGet,
			},
			{
				Name:   "list",
				Usage:  "List blobs stored under your key",
				Flags:  []cli.Flag{jsonFlag(), prettyFlag(), passphraseFlag()},
				Action: r.BlossomList,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Delete a blob from every configured server",
				Flags:   []cli.Flag{passphraseFlag()},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "hash"},
				},
				Action: r.BlossomRemove,
			},
		},
	}
}

// BlossomUpload pushes a local file to the configured servers and prints the
// resulting blob descriptor. The URL can be pasted into --manual-url or
// --receipt-url flags.
func (r *Runner) BlossomUpload(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: file path", shared.ErrMissingArgument)
	}

	blossom, err := r.blossomService(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := cmd.String("mime")
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	descriptor, err := blossom.Upload(ctx, data, mimeType)
	if err != nil {
		return err
	}

	r.logger.Info("blob uploaded", "hash", descriptor.SHA256, "size", len(data))
	r.writePlain("✓ Uploaded %s (%d bytes)\n", filepath.Base(path), len(data))
	r.writePlain("Hash: %s\n", descriptor.SHA256)
	r.writePlain("URL:  %s\n", descriptor.URL)
	return nil
}

// BlossomGet downloads a blob, verifying its hash, and writes it to --output
// or a file named after the hash.
func (r *Runner) BlossomGet(ctx context.Context, cmd *cli.Command) error {
	hash := cmd.StringArg("hash")
	if hash == "" {
		return fmt.Errorf("%w: blob hash", shared.ErrMissingArgument)
	}

	blossom, err := r.blossomService(cmd)
	if err != nil {
		return err
	}

	data, err := blossom.Fetch(ctx, hash)
	if err != nil {
		return err
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		outputPath = hash
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	r.writePlain("✓ Saved %d bytes to %s\n", len(data), outputPath)
	return nil
}

// BlossomList lists blobs stored under the user's public key.
func (r *Runner) BlossomList(ctx context.Context, cmd *cli.Command) error {
	blossom, err := r.blossomService(cmd)
	if err != nil {
		return err
	}

	blobs, err := blossom.List(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(blobs, cmd.Bool("pretty"))
	}

	if len(blobs) == 0 {
		r.writePlain("No blobs stored.\n")
		return nil
	}
	for _, blob := range blobs {
		r.writePlain("%s  %d bytes  %s\n", blob.SHA256, blob.Size, blob.Type)
	}
	return nil
}

// BlossomRemove deletes a blob from every configured server.
func (r *Runner) BlossomRemove(ctx context.Context, cmd *cli.Command) error {
	hash := cmd.StringArg("hash")
	if hash == "" {
		return fmt.Errorf("%w: blob hash", shared.ErrMissingArgument)
	}

	blossom, err := r.blossomService(cmd)
	if err != nil {
		return err
	}

	if err := blossom.Delete(ctx, hash); err != nil {
		return err
	}

	r.writePlain("✓ Blob removed: %s\n", hash)
	return nil
}
