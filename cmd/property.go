package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func propertyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Property name"},
		&cli.StringFlag{Name: "address", Usage: "Street address"},
		&cli.StringFlag{Name: "type", Usage: "Property type (house, condo, rental, ...)"},
		&cli.StringFlag{Name: "purchase-date", Usage: "Purchase date (MM/DD/YYYY)"},
		&cli.FloatFlag{Name: "purchase-price", Usage: "Purchase price"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

// propertyCommand handles property CRUD operations.
func propertyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "property",
		Aliases: []string{"prop"},
		Usage:   "Track homes and other properties",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a property",
				Flags:  propertyFlags(),
				Action: r.PropertyAdd,
			},
			{
				Name:  "list",
				Usage: "List properties",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Usage: "Filter by property type"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.PropertyList,
			},
			{
				Name:      "show",
				Usage:     "Show one property as JSON",
				Arguments: idArg(),
				Action:    r.PropertyShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a property",
				Flags:     propertyFlags(),
				Arguments: idArg(),
				Action:    r.PropertyEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a property",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.PropertyRemove,
			},
		},
	}
}

func applyPropertyFlags(p *models.Property, cmd *cli.Command) {
	if cmd.IsSet("name") {
		p.Name = cmd.String("name")
	}
	if cmd.IsSet("address") {
		p.Address = cmd.String("address")
	}
	if cmd.IsSet("type") {
		p.Type = cmd.String("type")
	}
	if cmd.IsSet("purchase-date") {
		p.PurchaseDate = cmd.String("purchase-date")
	}
	if cmd.IsSet("purchase-price") {
		p.PurchasePrice = cmd.Float("purchase-price")
	}
	if cmd.IsSet("notes") {
		p.Notes = cmd.String("notes")
	}
}

// PropertyAdd creates a property in the local cache.
func (r *Runner) PropertyAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	property := &models.Property{}
	applyPropertyFlags(property, cmd)

	if err := registry.Properties.Create(property); err != nil {
		return err
	}

	r.logger.Info("property created", "id", property.ID, "name", property.Name)
	r.writePlain("✓ Property added: %s (%s)\n", property.Name, property.ID)
	return nil
}

// PropertyList prints properties, optionally filtered by type.
func (r *Runner) PropertyList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if typ := cmd.String("type"); typ != "" {
		criteria["type"] = typ
	}

	items, err := registry.Properties.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.PropertyReport(items))
}

// PropertyShow prints a single property as JSON.
func (r *Runner) PropertyShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	property, err := registry.Properties.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(property, true)
}

// PropertyEdit updates only the fields whose flags were set.
func (r *Runner) PropertyEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	property, err := registry.Properties.Get(id)
	if err != nil {
		return err
	}

	applyPropertyFlags(property, cmd)

	if err := registry.Properties.Update(property); err != nil {
		return err
	}

	r.logger.Info("property updated", "id", property.ID)
	r.writePlain("✓ Property updated: %s\n", property.ID)
	return nil
}

// PropertyRemove soft-deletes a property locally and, with --publish,
// broadcasts a deletion event to the relays.
func (r *Runner) PropertyRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Properties.Delete(id); err != nil {
		return err
	}

	r.logger.Info("property removed", "id", id)
	r.writePlain("✓ Property removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindProperty, id)
}
