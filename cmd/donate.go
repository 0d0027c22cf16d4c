package main

import (
	"context"
	"fmt"

	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// donateCommand requests a lightning invoice for the configured address.
func donateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "donate",
		Usage: "Generate a lightning invoice for the project donation address",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "amount",
				Aliases: []string{"a"},
				Usage:   "Amount in sats",
				Value:   1000,
			},
			&cli.StringFlag{
				Name:  "address",
				Usage: "Lightning address override (name@domain)",
			},
		},
		Action: r.Donate,
	}
}

// Donate resolves the lightning address to its LNURL-pay endpoint and prints
// a bolt11 invoice for the requested amount.
func (r *Runner) Donate(ctx context.Context, cmd *cli.Command) error {
	address := cmd.String("address")
	if address == "" {
		address = r.config.Donation.LightningAddress
	}
	if address == "" {
		return fmt.Errorf("%w: no lightning address configured", shared.ErrMissingConfig)
	}

	amountSats := cmd.Int("amount")
	if amountSats <= 0 {
		return fmt.Errorf("%w: amount must be positive", shared.ErrInvalidFlag)
	}
	amountMsat := int64(amountSats) * 1000

	r.logger.Info("resolving lightning address", "address", address)

	params, err := r.lnurl.Resolve(ctx, address)
	if err != nil {
		return err
	}

	invoice, err := r.lnurl.RequestInvoice(ctx, params, amountMsat)
	if err != nil {
		return err
	}

	r.writePlain("Invoice for %s to %s:\n", shared.FormatSats(amountMsat), address)
	r.writePlain("%s\n", invoice)
	return nil
}
