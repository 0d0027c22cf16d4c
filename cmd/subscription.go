package main

import (
	"context"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/urfave/cli/v3"
)

func subscriptionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Subscription name"},
		&cli.FloatFlag{Name: "cost", Usage: "Cost per billing cycle"},
		&cli.StringFlag{Name: "cycle", Usage: "Billing cycle: monthly, quarterly, yearly"},
		&cli.StringFlag{Name: "renewal-date", Usage: "Next renewal date (MM/DD/YYYY)"},
		&cli.StringFlag{Name: "company", Usage: "Company ID billed by"},
		&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		&cli.BoolFlag{Name: "active", Usage: "Whether the subscription is active", Value: true},
	}
}

// subscriptionCommand handles recurring service subscriptions.
func subscriptionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "subscription",
		Aliases: []string{"sub"},
		Usage:   "Track recurring subscriptions",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a subscription",
				Flags:  subscriptionFlags(),
				Action: r.SubscriptionAdd,
			},
			{
				Name:  "list",
				Usage: "List subscriptions with the normalized monthly total",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "company", Usage: "Filter by company ID"},
					&cli.BoolFlag{Name: "all", Usage: "Include inactive subscriptions"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.SubscriptionList,
			},
			{
				Name:      "show",
				Usage:     "Show one subscription as JSON",
				Arguments: idArg(),
				Action:    r.SubscriptionShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a subscription",
				Flags:     subscriptionFlags(),
				Arguments: idArg(),
				Action:    r.SubscriptionEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a subscription",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.SubscriptionRemove,
			},
		},
	}
}

func applySubscriptionFlags(s *models.Subscription, cmd *cli.Command) {
	if cmd.IsSet("name") {
		s.Name = cmd.String("name")
	}
	if cmd.IsSet("cost") {
		s.Cost = cmd.Float("cost")
	}
	if cmd.IsSet("cycle") {
		s.BillingCycle = cmd.String("cycle")
	}
	if cmd.IsSet("renewal-date") {
		s.RenewalDate = cmd.String("renewal-date")
	}
	if cmd.IsSet("company") {
		s.CompanyID = cmd.String("company")
	}
	if cmd.IsSet("notes") {
		s.Notes = cmd.String("notes")
	}
	if cmd.IsSet("active") {
		s.Active = cmd.Bool("active")
	}
}

// SubscriptionAdd creates a subscription in the local cache. New
// subscriptions are active unless --active=false is given.
func (r *Runner) SubscriptionAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sub := &models.Subscription{Active: true}
	applySubscriptionFlags(sub, cmd)

	if err := registry.Subscriptions.Create(sub); err != nil {
		return err
	}

	r.logger.Info("subscription created", "id", sub.ID, "name", sub.Name)
	r.writePlain("✓ Subscription added: %s (%s)\n", sub.Name, sub.ID)
	return nil
}

// SubscriptionList prints subscriptions plus the normalized monthly total of
// the active ones. Inactive entries are hidden unless --all is set.
func (r *Runner) SubscriptionList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if co := cmd.String("company"); co != "" {
		criteria["company_id"] = co
	}
	if !cmd.Bool("all") {
		criteria["active"] = true
	}

	items, err := registry.Subscriptions.List(criteria)
	if err != nil {
		return err
	}

	total, err := registry.Subscriptions.MonthlyTotal()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"subscriptions": items,
			"monthly_total": total,
		}, cmd.Bool("pretty"))
	}
	return r.outputList(cmd, items, formatter.SubscriptionReport(items, total))
}

// SubscriptionShow prints a single subscription as JSON.
func (r *Runner) SubscriptionShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sub, err := registry.Subscriptions.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(sub, true)
}

// SubscriptionEdit updates only the fields whose flags were set. Cancelling is
// 'hearth sub edit <id> --active=false'.
func (r *Runner) SubscriptionEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sub, err := registry.Subscriptions.Get(id)
	if err != nil {
		return err
	}

	applySubscriptionFlags(sub, cmd)

	if err := registry.Subscriptions.Update(sub); err != nil {
		return err
	}

	r.logger.Info("subscription updated", "id", sub.ID)
	r.writePlain("✓ Subscription updated: %s\n", sub.ID)
	return nil
}

// SubscriptionRemove soft-deletes a subscription locally and, with --publish,
// broadcasts a deletion event to the relays.
func (r *Runner) SubscriptionRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Subscriptions.Delete(id); err != nil {
		return err
	}

	r.logger.Info("subscription removed", "id", id)
	r.writePlain("✓ Subscription removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindSubscription, id)
}
