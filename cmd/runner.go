package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hearthkeep/hearth/internal/repositories"
	"github.com/hearthkeep/hearth/internal/services"
	"github.com/hearthkeep/hearth/internal/shared"
	"github.com/hearthkeep/hearth/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The local database, relay store, and Blossom client are opened lazily so
// commands that never touch them (key generate, setup) do not require a
// database file or a decrypted identity.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	registry   *repositories.Registry
	store      services.EventStore
	blossom    *services.BlossomService
	lnurl      *services.LNURLService
	engine     *tasks.HomeEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Registry   *repositories.Registry
	Store      services.EventStore
	Blossom    *services.BlossomService
	LNURL      *services.LNURLService
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = "config.toml"
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.LNURL == nil {
		opts.LNURL = services.NewLNURLService(opts.HTTPClient)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		registry:   opts.Registry,
		store:      opts.Store,
		blossom:    opts.Blossom,
		lnurl:      opts.LNURL,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, keyCommand, applianceCommand, vehicleCommand, maintenanceCommand,
		companyCommand, subscriptionCommand, propertyCommand, projectCommand,
		relayCommand, blossomCommand, syncCommand, backupCommand, prefsCommand,
		donateCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openRegistry opens the local cache database and builds the repository
// registry. The handle is cached for the lifetime of the process.
func (r *Runner) openRegistry() (*repositories.Registry, error) {
	if r.registry != nil {
		return r.registry, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.registry = repositories.NewRegistry(db)
	return r.registry, nil
}

// loadIdentity decrypts the stored Nostr key. The passphrase comes from the
// --passphrase flag when set, falling back to HEARTH_PASSPHRASE.
func (r *Runner) loadIdentity(cmd *cli.Command) (string, error) {
	passphrase := cmd.String("passphrase")
	if passphrase == "" {
		passphrase = os.Getenv("HEARTH_PASSPHRASE")
	}

	secretKey, _, err := shared.LoadKey(r.config.Identity.KeyPath, passphrase)
	if err != nil {
		return "", err
	}
	return secretKey, nil
}

func (r *Runner) eventStore(cmd *cli.Command) (services.EventStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	secretKey, err := r.loadIdentity(cmd)
	if err != nil {
		return nil, err
	}

	store, err := services.NewRelayService(r.config, secretKey, r.logger)
	if err != nil {
		return nil, err
	}
	r.store = store
	return r.store, nil
}

func (r *Runner) blossomService(cmd *cli.Command) (*services.BlossomService, error) {
	if r.blossom != nil {
		return r.blossom, nil
	}

	secretKey, err := r.loadIdentity(cmd)
	if err != nil {
		return nil, err
	}

	blossom, err := services.NewBlossomService(r.config, secretKey, r.httpClient, r.logger)
	if err != nil {
		return nil, err
	}
	r.blossom = blossom
	return r.blossom, nil
}

func (r *Runner) homeEngine(cmd *cli.Command) (*tasks.HomeEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	store, err := r.eventStore(cmd)
	if err != nil {
		return nil, err
	}
	registry, err := r.openRegistry()
	if err != nil {
		return nil, err
	}

	r.engine = tasks.NewHomeEngine(store, registry, r.logger)
	return r.engine, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
