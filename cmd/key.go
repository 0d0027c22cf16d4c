package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// keyCommand manages the Nostr identity keystore.
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the Nostr identity key",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a new identity key and store it",
				Flags:  []cli.Flag{passphraseFlag()},
				Action: r.KeyGenerate,
			},
			{
				Name:  "import",
				Usage: "Import an existing secret key (hex or nsec)",
				Flags: []cli.Flag{passphraseFlag()},
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Action: r.KeyImport,
			},
			{
				Name:   "show",
				Usage:  "Show the public key for the stored identity",
				Flags:  []cli.Flag{passphraseFlag()},
				Action: r.KeyShow,
			},
			{
				Name:   "forget",
				Usage:  "Delete the stored identity key",
				Action: r.KeyForget,
			},
		},
	}
}

// KeyGenerate creates a fresh secret key and writes it to the configured
// keystore path. Refuses to overwrite an existing keystore.
func (r *Runner) KeyGenerate(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Identity.KeyPath
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: keystore already exists at %s, run 'hearth key forget' first", shared.ErrInvalidArgument, path)
	}

	passphrase := cmd.String("passphrase")
	if passphrase == "" {
		passphrase = os.Getenv("HEARTH_PASSPHRASE")
	}
	if passphrase == "" {
		r.logger.Warn("no passphrase given, key will be stored unencrypted")
	}

	secretKey := shared.GenerateKey()
	if err := shared.SaveKey(path, secretKey, passphrase); err != nil {
		return err
	}

	_, publicKey, err := shared.LoadKey(path, passphrase)
	if err != nil {
		return err
	}

	r.logger.Info("identity key generated", "path", path)
	r.writePlain("✓ Identity created\n")
	r.writePlain("Public key: %s\n", shared.Npub(publicKey))
	return nil
}

// KeyImport stores a user-provided secret key, accepting hex or nsec input.
func (r *Runner) KeyImport(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("key")
	if input == "" {
		return fmt.Errorf("%w: secret key (hex or nsec)", shared.ErrMissingArgument)
	}

	secretKey, err := shared.DecodeKeyInput(input)
	if err != nil {
		return err
	}

	path := r.config.Identity.KeyPath
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: keystore already exists at %s, run 'hearth key forget' first", shared.ErrInvalidArgument, path)
	}

	passphrase := cmd.String("passphrase")
	if passphrase == "" {
		passphrase = os.Getenv("HEARTH_PASSPHRASE")
	}

	if err := shared.SaveKey(path, secretKey, passphrase); err != nil {
		return err
	}

	_, publicKey, err := shared.LoadKey(path, passphrase)
	if err != nil {
		return err
	}

	r.logger.Info("identity key imported", "path", path)
	r.writePlain("✓ Identity imported\n")
	r.writePlain("Public key: %s\n", shared.Npub(publicKey))
	return nil
}

// KeyShow prints the stored identity's public key in npub and hex form.
func (r *Runner) KeyShow(ctx context.Context, cmd *cli.Command) error {
	passphrase := cmd.String("passphrase")
	if passphrase == "" {
		passphrase = os.Getenv("HEARTH_PASSPHRASE")
	}

	_, publicKey, err := shared.LoadKey(r.config.Identity.KeyPath, passphrase)
	if err != nil {
		return err
	}

	r.writePlain("Public key: %s\n", shared.Npub(publicKey))
	r.writePlain("Hex:        %s\n", publicKey)
	return nil
}

// KeyForget removes the keystore file. Events already published to relays are
// unaffected.
func (r *Runner) KeyForget(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Identity.KeyPath
	if err := shared.ForgetKey(path); err != nil {
		return err
	}
	r.logger.Info("keystore removed", "path", path)
	r.writePlain("✓ Identity key forgotten\n")
	return nil
}
