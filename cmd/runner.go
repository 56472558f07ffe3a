package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/favdl/internal/repositories"
	"github.com/desertthunder/favdl/internal/services"
	"github.com/desertthunder/favdl/internal/shared"
	"github.com/desertthunder/favdl/internal/tasks"
)

const version = "0.3.0"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	sessdata   string
	svc        services.Service
	logger     *log.Logger
	output     io.Writer
	progress   *tasks.Progress
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Service    services.Service // Built from Config on first use when nil
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		svc:        opts.Service,
		logger:     opts.Logger,
		output:     opts.Output,
		progress:   tasks.NewProgress(),
	}
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "favdl",
		Usage:   "Download the audio of every entry in a Bilibili favorites collection",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "sessdata",
				Usage:   "SESSDATA cookie value (overrides the config file)",
				Sources: cli.EnvVars("FAVDL_SESSDATA"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.before,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, collectionCommand, downloadCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file and applies the global flags.
//
// A missing config file falls back to the embedded defaults. A malformed one is an error.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path != "" {
		r.configPath = path
		config, err := shared.LoadConfig(path)
		switch {
		case err == nil:
			r.config = config
			r.logger.Debug("loaded config", "path", path)
		case errors.Is(err, os.ErrNotExist) && !cmd.IsSet("config"):
			r.logger.Debug("config file not found, using defaults", "path", path)
		case errors.Is(err, os.ErrNotExist):
			r.logger.Warn("config file not found, using defaults (run 'favdl setup' to create it)", "path", path)
		default:
			return ctx, err
		}
	}

	r.sessdata = cmd.String("sessdata")
	return ctx, nil
}

// SetLogger replaces the runner's logger, e.g. with a file logger while the TUI is active.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// credential returns the session token from --sessdata / FAVDL_SESSDATA, falling back to the config.
func (r *Runner) credential() services.Credential {
	if r.sessdata != "" {
		return services.Credential(r.sessdata)
	}
	return services.Credential(r.config.Credentials.Sessdata)
}

func (r *Runner) service() services.Service {
	if r.svc == nil {
		r.svc = services.NewBilibiliService(services.BilibiliOptsFromConfig(r.config))
	}
	return r.svc
}

// engine creates an engine sharing the runner's progress handle.
func (r *Runner) engine(history tasks.HistoryRecorder, updates chan<- tasks.ProgressUpdate) *tasks.Engine {
	return tasks.NewEngine(r.service(), r.progress, tasks.EngineOpts{
		Logger:   r.logger,
		History:  history,
		Updates:  updates,
		MaxPages: r.config.API.MaxPages,
	})
}

// openHistory opens the configured history database and runs pending migrations.
func (r *Runner) openHistory() (*sql.DB, *repositories.HistoryAdapter, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	adapter := repositories.NewHistoryAdapter(repositories.NewRunRepository(db), repositories.NewDownloadRepository(db))
	return db, adapter, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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
