package main

import (
	"context"
	"time"

	"github.com/hearthkeep/hearth/internal/formatter"
	"github.com/hearthkeep/hearth/internal/models"
	"github.com/hearthkeep/hearth/internal/schedule"
	"github.com/urfave/cli/v3"
)

func scheduleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Task name"},
		&cli.StringFlag{Name: "target-kind", Usage: "What the task maintains: appliance, vehicle, or property"},
		&cli.StringFlag{Name: "target-id", Usage: "ID of the appliance, vehicle, or property"},
		&cli.IntFlag{Name: "frequency", Usage: "How often the task recurs", Value: 1},
		&cli.StringFlag{Name: "unit", Usage: "Frequency unit: days, weeks, months, years"},
		&cli.StringFlag{Name: "base-date", Usage: "Date recurrence counts from (MM/DD/YYYY)"},
		&cli.StringFlag{Name: "instructions", Usage: "How to perform the task"},
		&cli.FloatFlag{Name: "estimated-cost", Usage: "Expected cost per completion"},
	}
}

// maintenanceCommand handles recurring maintenance schedules, the due report,
// and completion logging.
func maintenanceCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "maintenance",
		Aliases: []string{"maint"},
		Usage:   "Track recurring maintenance tasks",
		Commands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Add a maintenance schedule",
				Flags:  scheduleFlags(),
				Action: r.ScheduleAdd,
			},
			{
				Name:  "list",
				Usage: "List maintenance schedules",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "target-kind", Usage: "Filter by target kind"},
					&cli.StringFlag{Name: "target-id", Usage: "Filter by target ID"},
					formatFlag(), jsonFlag(), prettyFlag(),
				},
				Action: r.ScheduleList,
			},
			{
				Name:      "show",
				Usage:     "Show one schedule as JSON",
				Arguments: idArg(),
				Action:    r.ScheduleShow,
			},
			{
				Name:      "edit",
				Usage:     "Update fields on a schedule",
				Flags:     scheduleFlags(),
				Arguments: idArg(),
				Action:    r.ScheduleEdit,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a schedule",
				Flags:     []cli.Flag{publishFlag(), passphraseFlag()},
				Arguments: idArg(),
				Action:    r.ScheduleRemove,
			},
			{
				Name:   "due",
				Usage:  "Report which tasks are overdue or due soon",
				Flags:  []cli.Flag{formatFlag(), jsonFlag(), prettyFlag()},
				Action: r.MaintenanceDue,
			},
			{
				Name:  "complete",
				Usage: "Log a completion for a schedule",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Usage: "Completion date (MM/DD/YYYY), defaults to today"},
					&cli.FloatFlag{Name: "cost", Usage: "What the completion cost"},
					&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
					&cli.StringFlag{Name: "receipt-url", Usage: "Receipt attachment URL"},
				},
				Arguments: idArg(),
				Action:    r.MaintenanceComplete,
			},
			{
				Name:      "history",
				Usage:     "List completions for a schedule",
				Flags:     []cli.Flag{jsonFlag(), prettyFlag()},
				Arguments: idArg(),
				Action:    r.MaintenanceHistory,
			},
		},
	}
}

func applyScheduleFlags(s *models.MaintenanceSchedule, cmd *cli.Command) {
	if cmd.IsSet("name") {
		s.Name = cmd.String("name")
	}
	if cmd.IsSet("target-kind") {
		s.TargetKind = cmd.String("target-kind")
	}
	if cmd.IsSet("target-id") {
		s.TargetID = cmd.String("target-id")
	}
	if cmd.IsSet("frequency") {
		s.Frequency = int(cmd.Int("frequency"))
	}
	if cmd.IsSet("unit") {
		s.FrequencyUnit = cmd.String("unit")
	}
	if cmd.IsSet("base-date") {
		s.BaseDate = cmd.String("base-date")
	}
	if cmd.IsSet("instructions") {
		s.Instructions = cmd.String("instructions")
	}
	if cmd.IsSet("estimated-cost") {
		s.EstimatedCost = cmd.Float("estimated-cost")
	}
}

// ScheduleAdd creates a maintenance schedule in the local cache.
func (r *Runner) ScheduleAdd(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sched := &models.MaintenanceSchedule{Frequency: 1}
	applyScheduleFlags(sched, cmd)

	if err := registry.Schedules.Create(sched); err != nil {
		return err
	}

	r.logger.Info("schedule created", "id", sched.ID, "name", sched.Name)
	r.writePlain("✓ Schedule added: %s (%s)\n", sched.Name, sched.ID)
	return nil
}

// ScheduleList prints schedules, optionally filtered by target.
func (r *Runner) ScheduleList(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if kind := cmd.String("target-kind"); kind != "" {
		criteria["target_kind"] = kind
	}
	if target := cmd.String("target-id"); target != "" {
		criteria["target_id"] = target
	}

	items, err := registry.Schedules.List(criteria)
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.ScheduleReport(items))
}

// ScheduleShow prints a single schedule as JSON.
func (r *Runner) ScheduleShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sched, err := registry.Schedules.Get(id)
	if err != nil {
		return err
	}

	return r.writeJSON(sched, true)
}

// ScheduleEdit updates only the fields whose flags were set.
func (r *Runner) ScheduleEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	sched, err := registry.Schedules.Get(id)
	if err != nil {
		return err
	}

	applyScheduleFlags(sched, cmd)

	if err := registry.Schedules.Update(sched); err != nil {
		return err
	}

	r.logger.Info("schedule updated", "id", sched.ID)
	r.writePlain("✓ Schedule updated: %s\n", sched.ID)
	return nil
}

// ScheduleRemove soft-deletes a schedule locally and, with --publish,
// broadcasts a deletion event to the relays. Completions are kept for history.
func (r *Runner) ScheduleRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	if err := registry.Schedules.Delete(id); err != nil {
		return err
	}

	r.logger.Info("schedule removed", "id", id)
	r.writePlain("✓ Schedule removed: %s\n", id)
	return r.publishRemoval(ctx, cmd, models.KindMaintenanceSchedule, id)
}

// MaintenanceDue prints the due report: every schedule with its next due date
// classified as overdue, due soon, or ok.
func (r *Runner) MaintenanceDue(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	items, err := registry.Schedules.DueReport(time.Now())
	if err != nil {
		return err
	}

	return r.outputList(cmd, items, formatter.DueReport(items))
}

// MaintenanceComplete logs a completion for a schedule, defaulting the
// completion date to today.
func (r *Runner) MaintenanceComplete(ctx context.Context, cmd *cli.Command) error {
	scheduleID, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	// Fail early on a bad schedule ID rather than storing an orphan.
	sched, err := registry.Schedules.Get(scheduleID)
	if err != nil {
		return err
	}

	date := cmd.String("date")
	if date == "" {
		date = schedule.FormatDate(time.Now())
	}

	completion := &models.MaintenanceCompletion{
		ScheduleID:    scheduleID,
		CompletedDate: date,
		Cost:          cmd.Float("cost"),
		Notes:         cmd.String("notes"),
		ReceiptURL:    cmd.String("receipt-url"),
	}

	if err := registry.Completions.Create(completion); err != nil {
		return err
	}

	r.logger.Info("completion logged", "schedule", scheduleID, "date", date)
	r.writePlain("✓ Completed: %s on %s\n", sched.Name, date)

	if next, ok := schedule.NextDueFromStrings(sched.BaseDate, date, sched.Frequency, sched.FrequencyUnit); ok {
		r.writePlain("  Next due: %s\n", schedule.FormatDate(next))
	}
	return nil
}

// MaintenanceHistory lists completions for one schedule.
func (r *Runner) MaintenanceHistory(ctx context.Context, cmd *cli.Command) error {
	scheduleID, err := requireIDArg(cmd)
	if err != nil {
		return err
	}

	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	items, err := registry.Completions.List(map[string]any{"schedule_id": scheduleID})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if len(items) == 0 {
		r.writePlain("No completions recorded.\n")
		return nil
	}
	for _, c := range items {
		if c.Cost > 0 {
			r.writePlain("%-12s $%.2f  %s\n", c.CompletedDate, c.Cost, c.Notes)
		} else {
			r.writePlain("%-12s %s\n", c.CompletedDate, c.Notes)
		}
	}
	return nil
}
