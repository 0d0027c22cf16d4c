package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/hearthkeep/hearth/internal/ui"
	"github.com/urfave/cli/v3"
)

// tuiCommand launches the interactive dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Browse household data in an interactive dashboard",
		Flags:  []cli.Flag{passphraseFlag()},
		Action: r.TUI,
	}
}

// TUI launches the terminal dashboard. Logs are redirected to a file so they
// do not interfere with rendering.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.homeEngine(cmd)
	if err != nil {
		return err
	}

	logPath := filepath.Join(os.TempDir(), "hearth-tui.log")
	if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
		defer logFile.Close()
		r.logger = shared.NewLogger(logFile)
	}

	model := ui.NewModel(ctx, engine)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
