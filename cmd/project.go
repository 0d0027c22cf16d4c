package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func projectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Project name"},
		&cli.StringFlag{Name: "property", Usage: "Property ID the project belongs to"},
		&cli.StringFlag{Name: "status", Usage: "Project status: planned, in_progress, completed"},
		&cli.FloatFlag{Name: "budget", Usage: "Planned budget"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

func materialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "project", Usage: "Project ID the material belongs to"},
		&cli.StringFlag{Name: "name", Usage: "Material name"},
		&cli.FloatFlag{Name: "cost", Usage: "Unit cost"},
		&cli.FloatFlag{Name: "quantity", Usage: "Quantity purchased"},
		&cli.StringFlag{Name: "company", Usage: "Company ID purchased from"},
		&cli.StringFlag{Name: "receipt-url", Usage: "Receipt attachment URL"},
	}
}

// projectCommand handles home improvement projects and their material line items.
func projectCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "project",
		Aliases: []string{"proj"},
		Usage:   "Track home improvement projects",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a project",
				Flags:  projectFlags(),
				Action: r.ProjectAdd,
			},
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "property", Usage: "Filter by property ID"},
					&cli.StringFlag{Name: "status", Usage: "Filter by status"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.ProjectList,
			},
			{
				Name:      "show",
				Usage:     "Show one project with its material total",
				Arguments: idArg(),
				Action:    r.ProjectShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a project",
				Flags:     projectFlags(),
				Arguments: idArg(),
				Action:    r.ProjectEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a project",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.ProjectRemove,
			},
			{
				Name:    "material",
				Aliases: []string{"mat"},
				Usage:   "Track project materials",
				Commands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Add a material to a project",
						Flags:  materialFlags(),
						Action: r.MaterialAdd,
					},
					{
						Name:  "list",
						Usage: "List materials for a project with the running total",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "project", Usage: "Project ID", Required: true},
							formatFlag(), jsonFlag(), prettyFlag(),
						},
						Action: r.MaterialList,
					},
					{
						Name:      "edit",
						Usage:     "Update fields on a material",
						Flags:     materialFlags(),
						Arguments: idArg(),
						Action:    r.MaterialEdit,
					},
					{
						Name:      "remove",
						Aliases:   []string{"rm"},
						Usage:     "Remove a material",
						Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
						Arguments: idArg(),
						Action:    r.MaterialRemove,
					},
				},
			},
		},
	}
}

func applyProjectFlags(p *models.Project, cmd *cli.Command) {
	if cmd.IsSet("name") {
		p.Name = cmd.String("name")
	}
	if cmd.IsSet("property") {
		p.PropertyID = cmd.String("property")
	}
	if cmd.IsSet("status") {
		p.Status = cmd.String("status")
	}
	if cmd.IsSet("budget") {
		p.Budget = cmd.Float("budget")
	}
	if cmd.IsSet("notes") {
		p.Notes = cmd.String("notes")
	}
}

func applyMaterialFlags(m *models.ProjectMaterial, cmd *cli.Command) {
	if cmd.IsSet("project") {
		m.ProjectID = cmd.String("project")
	}
	if cmd.IsSet("name") {
		m.Name = cmd.String("name")
	}
	if cmd.IsSet("cost") {
		m.Cost = cmd.Float("cost")
	}
	if cmd.IsSet("quantity") {
		m.Quantity = cmd.Float("quantity")
	}
	if cmd.IsSet("company") {
		m.CompanyID = cmd.String("company")
	}
	if cmd.IsSet("receipt-url") {
		m.ReceiptURL = cmd.String("receipt-url")
	}
}

// ProjectAdd creates a project in the local cache.
func (r *Runner) ProjectAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	project := &models.Project{}
	applyProjectFlags(project, cmd)

	if err := registry.Projects.Create(project); err != nil {
		return err
	}

	r.logger.Info("project created", "id", project.ID, "name", project.Name)
	r.writePlain("✓ Project added: %s (%s)\n", project.Name, project.ID)
	return nil
}

// ProjectList prints projects, optionally filtered by property or status.
func (r *Runner) ProjectList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if prop := cmd.String("property"); prop != "" {
		criteria["property_id"] = prop
	}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	items, err := registry.Projects.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.ProjectReport(items))
}

// ProjectShow prints a project as JSON along with its material spend so far.
func (r *Runner) ProjectShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	project, err := registry.Projects.Get(id)
	if err != nil {
		return err
	}

	total, err := registry.Materials.TotalCost(id)
	if err != nil {
		return err
	}

	return r.writeJSON(map[string]any{
		"project":       project,
		"material_cost": total,
	}, true)
}

// ProjectEdit updates only the fields whose flags were set.
func (r *Runner) ProjectEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	project, err := registry.Projects.Get(id)
	if err != nil {
		return err
	}

	applyProjectFlags(project, cmd)

	if err := registry.Projects.Update(project); err != nil {
		return err
	}

	r.logger.Info("project updated", "id", project.ID)
	r.writePlain("✓ Project updated: %s\n", project.ID)
	return nil
}

// ProjectRemove soft-deletes a project locally and, with --publish, broadcasts
// a deletion event to the relays. Material line items are kept.
func (r *Runner) ProjectRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Projects.Delete(id); err != nil {
		return err
	}

	r.logger.Info("project removed", "id", id)
	r.writePlain("✓ Project removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindProject, id)
}

// MaterialAdd records a material line item against a project.
func (r *Runner) MaterialAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	material := &models.ProjectMaterial{Quantity: 1}
	applyMaterialFlags(material, cmd)

	// Fail early on a bad project ID rather than storing an orphan.
	if _, err := registry.Projects.Get(material.ProjectID); err != nil {
		return err
	}

	if err := registry.Materials.Create(material); err != nil {
		return err
	}

	r.logger.Info("material created", "id", material.ID, "project", material.ProjectID)
	r.writePlain("✓ Material added: %s (%s)\n", material.Name, material.ID)
	return nil
}

// MaterialList prints a project's materials and running total cost.
func (r *Runner) MaterialList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	projectID := cmd.String("project")
	items, err := registry.Materials.List(map[string]any{"project_id": projectID})
	if err != nil {
		return err
	}

	total, err := registry.Materials.TotalCost(projectID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"materials":  items,
			"total_cost": total,
		}, cmd.Bool("pretty"))
	}

	if err := r.outputList(cmd, items, formatter.MaterialReport(items)); err != nil {
		return err
	}
	return r.writePlain("Total: $%.2f\n", total)
}

// MaterialEdit updates only the fields whose flags were set.
func (r *Runner) MaterialEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	material, err := registry.Materials.Get(id)
	if err != nil {
		return err
	}

	applyMaterialFlags(material, cmd)

	if err := registry.Materials.Update(material); err != nil {
		return err
	}

	r.logger.Info("material updated", "id", material.ID)
	r.writePlain("✓ Material updated: %s\n", material.ID)
	return nil
}

// MaterialRemove soft-deletes a material line item and, with --publish,
// broadcasts a deletion event to the relays.
func (r *Runner) MaterialRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Materials.Delete(id); err != nil {
		return err
	}

	r.logger.Info("material removed", "id", id)
	r.writePlain("✓ Material removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindProjectMaterial, id)
}
