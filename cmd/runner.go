package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/repositories"
	"github.com/desertthunder/searchviz/internal/services"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	searcher services.Searcher
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	// Searcher replaces the configured backend when set.
	Searcher services.Searcher
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
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		searcher: opts.Searcher,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		searchCommand, scheduleCommand, historyCommand, taxonomyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// newSearcher builds the configured backend with the command line overrides applied.
func (r *Runner) newSearcher(failWith string, latency time.Duration, logger *log.Logger) (services.Searcher, error) {
	if r.searcher != nil {
		return r.searcher, nil
	}

	cfg := r.config.Backend
	if failWith != "" {
		kind := recovery.ParseKind(failWith)
		if kind == models.ErrorUnknown && !strings.EqualFold(failWith, string(models.ErrorUnknown)) {
			return nil, fmt.Errorf("%w: unknown error kind %q", shared.ErrInvalidFlag, failWith)
		}
		cfg.FailWith = string(kind)
	}
	if latency > 0 {
		cfg.LatencyMS = int(latency.Milliseconds())
	}
	return services.New(cfg, logger)
}

// openHistory opens the run history database, creating its schema if needed.
func (r *Runner) openHistory() (*sql.DB, *repositories.RunRepository, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	return db, repositories.NewRunRepository(db), nil
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
