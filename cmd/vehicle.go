package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func vehicleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Vehicle name"},
		&cli.StringFlag{Name: "make", Usage: "Manufacturer"},
		&cli.StringFlag{Name: "model", Usage: "Model"},
		&cli.IntFlag{Name: "year", Usage: "Model year"},
		&cli.StringFlag{Name: "vin", Usage: "Vehicle identification number"},
		&cli.StringFlag{Name: "plate", Usage: "License plate"},
		&cli.StringFlag{Name: "purchase-date", Usage: "Purchase date (MM/DD/YYYY)"},
		&cli.FloatFlag{Name: "purchase-price", Usage: "Purchase price"},
		&cli.IntFlag{Name: "odometer", Usage: "Current odometer reading"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

// vehicleCommand handles vehicle CRUD operations.
func vehicleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "vehicle",
		Aliases: []string{"veh"},
		Usage:   "Track household vehicles",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a vehicle",
				Flags:  vehicleFlags(),
				Action: r.VehicleAdd,
			},
			{
				Name:  "list",
				Usage: "List vehicles",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "make", Usage: "Filter by manufacturer"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.VehicleList,
			},
			{
				Name:      "show",
				Usage:     "Show one vehicle as JSON",
				Arguments: idArg(),
				Action:    r.VehicleShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a vehicle",
				Flags:     vehicleFlags(),
				Arguments: idArg(),
				Action:    r.VehicleEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a vehicle",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.VehicleRemove,
			},
		},
	}
}

func applyVehicleFlags(v *models.Vehicle, cmd *cli.Command) {
	if cmd.IsSet("name") {
		v.Name = cmd.String("name")
	}
	if cmd.IsSet("make") {
		v.Make = cmd.String("make")
	}
	if cmd.IsSet("model") {
		v.Model = cmd.String("model")
	}
	if cmd.IsSet("year") {
		v.Year = int(cmd.Int("year"))
	}
	if cmd.IsSet("vin") {
		v.VIN = cmd.String("vin")
	}
	if cmd.IsSet("plate") {
		v.Plate = cmd.String("plate")
	}
	if cmd.IsSet("purchase-date") {
		v.PurchaseDate = cmd.String("purchase-date")
	}
	if cmd.IsSet("purchase-price") {
		v.PurchasePrice = cmd.Float("purchase-price")
	}
	if cmd.IsSet("odometer") {
		v.Odometer = int(cmd.Int("odometer"))
	}
	if cmd.IsSet("notes") {
		v.Notes = cmd.String("notes")
	}
}

// VehicleAdd creates a vehicle in the local cache.
func (r *Runner) VehicleAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	vehicle := &models.Vehicle{}
	applyVehicleFlags(vehicle, cmd)

	if err := registry.Vehicles.Create(vehicle); err != nil {
		return err
	}

	r.logger.Info("vehicle created", "id", vehicle.ID, "name", vehicle.Name)
	r.writePlain("✓ Vehicle added: %s (%s)\n", vehicle.Name, vehicle.ID)
	return nil
}

// VehicleList prints vehicles, optionally filtered by make.
func (r *Runner) VehicleList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if mk := cmd.String("make"); mk != "" {
		criteria["make"] = mk
	}

	items, err := registry.Vehicles.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.VehicleReport(items))
}

// VehicleShow prints a single vehicle as JSON.
func (r *Runner) VehicleShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	vehicle, err := registry.Vehicles.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(vehicle, true)
}

// VehicleEdit updates only the fields whose flags were set.
func (r *Runner) VehicleEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	vehicle, err := registry.Vehicles.Get(id)
	if err != nil {
		return err
	}

	applyVehicleFlags(vehicle, cmd)

	if err := registry.Vehicles.Update(vehicle); err != nil {
		return err
	}

	r.logger.Info("vehicle updated", "id", vehicle.ID)
	r.writePlain("✓ Vehicle updated: %s\n", vehicle.ID)
	return nil
}

// VehicleRemove soft-deletes a vehicle locally and, with --publish, broadcasts
// a deletion event to the relays.
func (r *Runner) VehicleRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Vehicles.Delete(id); err != nil {
		return err
	}

	r.logger.Info("vehicle removed", "id", id)
	r.writePlain("✓ Vehicle removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindVehicle, id)
}
