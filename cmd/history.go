package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/searchviz/internal/formatter"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/repositories"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/stages"
	"github.com/urfave/cli/v3"
)

// History lists recorded runs as a table, JSON or CSV, or exports them to files.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	filter := repositories.RunFilter{Limit: cmd.Int("limit")}
	if t := cmd.String("type"); t != "" {
		searchType, err := models.ParseSearchType(t)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		filter.SearchType = searchType
	}
	if o := cmd.String("outcome"); o != "" {
		switch outcome := models.RunOutcome(o); outcome {
		case models.RunCompleted, models.RunCancelled, models.RunFailed:
			filter.Outcome = outcome
		default:
			return fmt.Errorf("%w: unknown outcome %q", shared.ErrInvalidFlag, o)
		}
	}
	if cmd.Bool("json") && cmd.Bool("csv") {
		return fmt.Errorf("%w: --json and --csv are mutually exclusive", shared.ErrInvalidFlag)
	}

	db, repo, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repo.List(filter)
	if err != nil {
		return err
	}
	r.logger.Debug("listed runs", "count", len(runs), "type", filter.SearchType, "outcome", filter.Outcome)

	if base := cmd.String("export"); base != "" {
		result, err := formatter.WriteRunsExport(runs, base)
		if err != nil {
			return fmt.Errorf("failed to export runs: %w", err)
		}
		r.logger.Info("runs exported", "count", len(runs), "csv", result.CSVFile, "json", result.JSONFile)
		return r.writePlain("✓ Exported %d runs\n  CSV:  %s\n  JSON: %s\n", len(runs), result.CSVFile, result.JSONFile)
	}

	switch {
	case cmd.Bool("json"):
		data, err := formatter.RunsToJSON(runs)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	case cmd.Bool("csv"):
		data, err := formatter.RunsToCSV(runs)
		if err != nil {
			return err
		}
		_, err = r.output.Write(data)
		return err
	}

	total, err := repo.Count()
	if err != nil {
		return err
	}
	r.writePlainHeader(fmt.Sprintf("Runs (%d of %d)", len(runs), total))
	return r.writePlain("%s", formatter.RunsText(runs))
}

// Schedule prints the stage timeline the animation would follow.
func (r *Runner) Schedule(ctx context.Context, cmd *cli.Command) error {
	catalog := stages.Catalog()
	estimated := cmd.Duration("estimated")
	if estimated <= 0 {
		estimated = shared.Millis(r.config.Animation.EstimatedDurationMS)
	}
	if estimated > 0 {
		catalog = stages.ScaleTo(catalog, estimated)
	}

	accelerate := r.config.Animation.Acceleration && !cmd.Bool("no-accel")
	schedule := stages.ComputeSchedule(catalog, cmd.Duration("response"), accelerate)

	r.writePlainHeader("Animation schedule")
	return r.writePlain("%s", formatter.ScheduleText(schedule, catalog))
}

// Taxonomy prints every error kind with its stage and recovery actions.
func (r *Runner) Taxonomy(ctx context.Context, cmd *cli.Command) error {
	r.writePlainHeader("Error taxonomy")
	return r.writePlain("%s", formatter.TaxonomyText())
}
