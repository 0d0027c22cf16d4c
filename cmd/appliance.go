package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func applianceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Appliance name"},
		&cli.StringFlag{Name: "brand", Usage: "Manufacturer"},
		&cli.StringFlag{Name: "model", Usage: "Model number"},
		&cli.StringFlag{Name: "serial", Usage: "Serial number"},
		&cli.StringFlag{Name: "purchase-date", Usage: "Purchase date (MM/DD/YYYY)"},
		&cli.FloatFlag{Name: "purchase-price", Usage: "Purchase price"},
		&cli.StringFlag{Name: "warranty-expires", Usage: "Warranty expiration date (MM/DD/YYYY)"},
		&cli.StringFlag{Name: "location", Usage: "Where the appliance lives"},
		&cli.StringFlag{Name: "manual-url", Usage: "Manual attachment URL"},
		&cli.StringFlag{Name: "receipt-url", Usage: "Receipt attachment URL"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		&cli.StringFlag{Name: "property", Usage: "Property ID this appliance belongs to"},
	}
}

// applianceCommand handles appliance CRUD operations against the local cache.
func applianceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "appliance",
		Aliases: []string{"app"},
		Usage:   "Track household appliances",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add an appliance",
				Flags:  applianceFlags(),
				Action: r.ApplianceAdd,
			},
			{
				Name:  "list",
				Usage: "List appliances",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "location", Usage: "Filter by location"},
					&cli.StringFlag{Name: "property", Usage: "Filter by property ID"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.ApplianceList,
			},
			{
				Name:      "show",
				Usage:     "Show one appliance as JSON",
				Arguments: idArg(),
				Action:    r.ApplianceShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on an appliance",
				Flags:     applianceFlags(),
				Arguments: idArg(),
				Action:    r.ApplianceEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an appliance",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.ApplianceRemove,
			},
		},
	}
}

func applyApplianceFlags(a *models.Appliance, cmd *cli.Command) {
	if cmd.IsSet("name") {
		a.Name = cmd.String("name")
	}
	if cmd.IsSet("brand") {
		a.Brand = cmd.String("brand")
	}
	if cmd.IsSet("model") {
		a.Model = cmd.String("model")
	}
	if cmd.IsSet("serial") {
		a.Serial = cmd.String("serial")
	}
	if cmd.IsSet("purchase-date") {
		a.PurchaseDate = cmd.String("purchase-date")
	}
	if cmd.IsSet("purchase-price") {
		a.PurchasePrice = cmd.Float("purchase-price")
	}
	if cmd.IsSet("warranty-expires") {
		a.WarrantyExpires = cmd.String("warranty-expires")
	}
	if cmd.IsSet("location") {
		a.Location = cmd.String("location")
	}
	if cmd.IsSet("manual-url") {
		a.ManualURL = cmd.String("manual-url")
	}
	if cmd.IsSet("receipt-url") {
		a.ReceiptURL = cmd.String("receipt-url")
	}
	if cmd.IsSet("notes") {
		a.Notes = cmd.String("notes")
	}
	if cmd.IsSet("property") {
		a.PropertyID = cmd.String("property")
	}
}

// ApplianceAdd creates an appliance in the local cache.
func (r *Runner) ApplianceAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	appliance := &models.Appliance{}
	applyApplianceFlags(appliance, cmd)

	if err := registry.Appliances.Create(appliance); err != nil {
		return err
	}

	r.logger.Info("appliance created", "id", appliance.ID, "name", appliance.Name)
	r.writePlain("✓ Appliance added: %s (%s)\n", appliance.Name, appliance.ID)
	return nil
}

// ApplianceList prints appliances, optionally filtered by location or property.
func (r *Runner) ApplianceList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if loc := cmd.String("location"); loc != "" {
		criteria["location"] = loc
	}
	if prop := cmd.String("property"); prop != "" {
		criteria["property_id"] = prop
	}

	items, err := registry.Appliances.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.ApplianceReport(items))
}

// ApplianceShow prints a single appliance as JSON.
func (r *Runner) ApplianceShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	appliance, err := registry.Appliances.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(appliance, true)
}

// ApplianceEdit updates only the fields whose flags were set.
func (r *Runner) ApplianceEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	appliance, err := registry.Appliances.Get(id)
	if err != nil {
		return err
	}

	applyApplianceFlags(appliance, cmd)

	if err := registry.Appliances.Update(appliance); err != nil {
		return err
	}

	r.logger.Info("appliance updated", "id", appliance.ID)
	r.writePlain("✓ Appliance updated: %s\n", appliance.ID)
	return nil
}

// ApplianceRemove soft-deletes an appliance locally and, with --publish,
// broadcasts a deletion event to the relays.
func (r *Runner) ApplianceRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Appliances.Delete(id); err != nil {
		return err
	}

	r.logger.Info("appliance removed", "id", id)
	r.writePlain("✓ Appliance removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindAppliance, id)
}
