package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hearthkeep/hearth/internal/server"
	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/urfave/cli/v3"
)

// serveCommand runs the local read-only HTTP viewer.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a read-only JSON API over the local cache",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Bind host (overrides config)"},
			&cli.IntFlag{Name: "port", Usage: "Bind port (overrides config)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the health endpoint in a browser"},
		},
		Action: r.Serve,
	}
}

// Serve starts the HTTP server and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	registry, err := r.openRegistry()
	if err != nil {
		return err
	}

	serverConfig := r.config.Server
	if host := cmd.String("host"); host != "" {
		serverConfig.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		serverConfig.Port = int(port)
	}

	srv := server.New(registry, serverConfig, r.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	r.writePlain("Serving on http://%s\n", srv.Addr())

	if cmd.Bool("open") {
		url := fmt.Sprintf("http://%s/health", srv.Addr())
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		r.logger.Info("shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
