package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/formatter"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/services"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/tasks"
	"github.com/desertthunder/searchviz/internal/ui"
	"github.com/urfave/cli/v3"
)

// maxListedMatches caps the matches printed after a plain run.
const maxListedMatches = 10

// Search runs one search with the progress animation, interactively or as plain narration.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	text := strings.TrimSpace(cmd.StringArg("query"))
	if text == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	searchType, err := models.ParseSearchType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	q := services.Query{Text: text, Type: searchType}

	plain := cmd.Bool("plain")
	logger := r.logger
	if !plain {
		logger = r.interactiveLogger()
	}

	searcher, err := r.newSearcher(cmd.String("fail"), cmd.Duration("latency"), logger)
	if err != nil {
		return err
	}

	var history tasks.History
	if !cmd.Bool("no-history") {
		db, repo, err := r.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		history = repo
	}

	opts := tasks.OptionsFromConfig(r.config.Animation, logger)
	if d := cmd.Duration("estimated"); d > 0 {
		opts.EstimatedDuration = d
	}
	engine := tasks.NewSearchEngine(searcher, history, opts)

	logger.Debug("starting search", "query", q.Text, "type", q.Type, "backend", searcher.Name(), "plain", plain)
	if plain {
		return r.searchPlain(ctx, engine, q)
	}
	return r.searchInteractive(ctx, engine, q, logger)
}

// interactiveLogger sends logs to the configured file so they do not tear the terminal view.
func (r *Runner) interactiveLogger() *log.Logger {
	if r.config.Log.File == "" {
		return shared.DiscardLogger()
	}

	logger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		r.logger.Warn("failed to open log file, logging disabled", "path", r.config.Log.File, "error", err)
		return shared.DiscardLogger()
	}
	if err := shared.ApplyLogLevel(logger, r.config.Log.Level); err != nil {
		r.logger.Warn("invalid log level", "level", r.config.Log.Level, "error", err)
	}
	return logger
}

func (r *Runner) searchPlain(ctx context.Context, engine *tasks.SearchEngine, q services.Query) error {
	report, err := engine.RunHeadless(ctx, q, formatter.NewNarrator(nil).Listener(r.output))
	if err != nil {
		return fmt.Errorf("failed to start search: %w", err)
	}

	switch report.Outcome.Kind {
	case animation.OutcomeComplete:
		r.writeMatches(report.Result)
	case animation.OutcomeCancelled:
		r.writePlainln("Search cancelled after %s.", shared.FormatMillis(report.Outcome.Elapsed))
	}
	r.writeRecorded(report.Run)

	if e := report.Outcome.Err; e != nil {
		return fmt.Errorf("search failed (%s): %s", e.Type, e.UserMessage)
	}
	return nil
}

func (r *Runner) searchInteractive(ctx context.Context, engine *tasks.SearchEngine, q services.Query, logger *log.Logger) error {
	model, err := ui.NewModel(ctx, engine, q, logger)
	if err != nil {
		return fmt.Errorf("failed to create search view: %w", err)
	}

	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("search view failed: %w", err)
	}

	if target := model.Navigate(); target != "" {
		return r.writePlain("%s\n", ui.NavigationHint(target))
	}
	if o, ok := model.Outcome(); ok && o.Kind == animation.OutcomeComplete {
		r.writeMatches(model.Result())
	}
	r.writeRecorded(model.Run())
	return nil
}

func (r *Runner) writeMatches(res *services.Result) {
	if res == nil {
		return
	}

	r.writePlainln("Found %d matches in %s", len(res.Matches), shared.FormatMillis(res.ResponseTime))
	for i, m := range res.Matches {
		if i == maxListedMatches {
			r.writePlain("  … %d more\n", len(res.Matches)-i)
			break
		}
		r.writePlain("  %2d. %s (%.2f)\n", i+1, m.Title, m.Score)
	}
}

func (r *Runner) writeRecorded(run *models.Run) {
	if run == nil || run.Sequence == 0 {
		return
	}
	r.writePlain("Recorded run #%d (%s)\n", run.Sequence, run.ID)
}
