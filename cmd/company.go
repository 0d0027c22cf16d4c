package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func companyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Company name"},
		&cli.StringFlag{Name: "category", Usage: "Category (plumber, electrician, insurer, ...)"},
		&cli.StringFlag{Name: "phone", Usage: "Phone number"},
		&cli.StringFlag{Name: "email", Usage: "Email address"},
		&cli.StringFlag{Name: "website", Usage: "Website URL"},
		&cli.StringFlag{Name: "address", Usage: "Street address"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
	}
}

// companyCommand handles service provider contact cards.
func companyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "company",
		Aliases: []string{"co"},
		Usage:   "Track service providers and vendors",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a company",
				Flags:  companyFlags(),
				Action: r.CompanyAdd,
			},
			{
				Name:  "list",
				Usage: "List companies",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "Filter by category"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.CompanyList,
			},
			{
				Name:      "show",
				Usage:     "Show one company as JSON",
				Arguments: idArg(),
				Action:    r.CompanyShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a company",
				Flags:     companyFlags(),
				Arguments: idArg(),
				Action:    r.CompanyEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a company",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.CompanyRemove,
			},
		},
	}
}

func applyCompanyFlags(c *models.Company, cmd *cli.Command) {
	if cmd.IsSet("name") {
		c.Name = cmd.String("name")
	}
	if cmd.IsSet("category") {
		c.Category = cmd.String("category")
	}
	if cmd.IsSet("phone") {
		c.Phone = cmd.String("phone")
	}
	if cmd.IsSet("email") {
		c.Email = cmd.String("email")
	}
	if cmd.IsSet("website") {
		c.Website = cmd.String("website")
	}
	if cmd.IsSet("address") {
		c.Address = cmd.String("address")
	}
	if cmd.IsSet("notes") {
		c.Notes = cmd.String("notes")
	}
}

// CompanyAdd creates a company in the local cache.
func (r *Runner) CompanyAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	company := &models.Company{}
	applyCompanyFlags(company, cmd)

	if err := registry.Companies.Create(company); err != nil {
		return err
	}

	r.logger.Info("company created", "id", company.ID, "name", company.Name)
	r.writePlain("✓ Company added: %s (%s)\n", company.Name, company.ID)
	return nil
}

// CompanyList prints companies, optionally filtered by category.
func (r *Runner) CompanyList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if cat := cmd.String("category"); cat != "" {
		criteria["category"] = cat
	}

	items, err := registry.Companies.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.CompanyReport(items))
}

// CompanyShow prints a single company as JSON.
func (r *Runner) CompanyShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	company, err := registry.Companies.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(company, true)
}

// CompanyEdit updates only the fields whose flags were set.
func (r *Runner) CompanyEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	company, err := registry.Companies.Get(id)
	if err != nil {
		return err
	}

	applyCompanyFlags(company, cmd)

	if err := registry.Companies.Update(company); err != nil {
		return err
	}

	r.logger.Info("company updated", "id", company.ID)
	r.writePlain("✓ Company updated: %s\n", company.ID)
	return nil
}

// CompanyRemove soft-deletes a company locally and, with --publish, broadcasts
// a deletion event to the relays.
func (r *Runner) CompanyRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Companies.Delete(id); err != nil {
		return err
	}

	r.logger.Info("company removed", "id", id)
	r.writePlain("✓ Company removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindCompany, id)
}
