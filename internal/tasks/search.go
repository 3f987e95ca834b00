package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/services"
	"github.com/desertthunder/searchviz/internal/shared"
)

// History stores finished runs. [repositories.RunRepository] implements it.
type History interface {
	Create(run *models.Run) error
	LastSuccessful(searchType models.SearchType) (*models.Run, error)
}

// EngineOptions tune the animation of every run.
type EngineOptions struct {
	SubStepDelay        time.Duration
	PolicyInterval      time.Duration
	EstimatedDuration   time.Duration
	DisableAcceleration bool
	Clock               scheduler.Clock
	Logger              *log.Logger
}

// OptionsFromConfig maps the [animation] config section onto engine options.
func OptionsFromConfig(cfg shared.AnimationConfig, logger *log.Logger) EngineOptions {
	return EngineOptions{
		SubStepDelay:        shared.Millis(cfg.SubStepDelayMS),
		PolicyInterval:      shared.Millis(cfg.PolicyIntervalMS),
		EstimatedDuration:   shared.Millis(cfg.EstimatedDurationMS),
		DisableAcceleration: !cfg.Acceleration,
		Logger:              logger,
	}
}

// SearchDone is the outcome of one backend call.
type SearchDone struct {
	Result *services.Result
	Err    error
}

// SearchEngine runs searches and their animations.
type SearchEngine struct {
	searcher services.Searcher
	history  History
	opts     EngineOptions
	logger   *log.Logger
}

// NewSearchEngine creates an engine. history may be nil to skip persistence.
func NewSearchEngine(searcher services.Searcher, history History, opts EngineOptions) *SearchEngine {
	if opts.Clock == nil {
		opts.Clock = scheduler.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.DiscardLogger()
	}
	return &SearchEngine{
		searcher: searcher,
		history:  history,
		opts:     opts,
		logger:   opts.Logger,
	}
}

// Clock returns the engine's time source.
func (e *SearchEngine) Clock() scheduler.Clock { return e.opts.Clock }

// Inputs builds the animation inputs for q.
func (e *SearchEngine) Inputs(q services.Query) animation.Inputs {
	in := animation.Inputs{
		Query:               q.Text,
		SearchType:          q.Type,
		EstimatedDuration:   e.opts.EstimatedDuration,
		DisableAcceleration: e.opts.DisableAcceleration,
	}
	if e.history == nil {
		return in
	}

	last, err := e.history.LastSuccessful(q.Type)
	switch {
	case err == nil:
		in.ActualResponseTime = last.ResponseTime
		e.logger.Debug("measured response time", "type", q.Type, "response", shared.FormatMillis(last.ResponseTime))
	case !errors.Is(err, shared.ErrRunNotFound):
		e.logger.Warn("failed to read run history", "error", err)
	}
	return in
}

// NewController creates a controller configured with the engine's options.
func (e *SearchEngine) NewController(sched *scheduler.Scheduler, n animation.Notifier, values animation.ValueSource) (*animation.Controller, error) {
	return animation.NewController(animation.Options{
		Clock:          e.opts.Clock,
		Scheduler:      sched,
		Notifier:       n,
		Logger:         e.logger,
		SubStepDelay:   e.opts.SubStepDelay,
		PolicyInterval: e.opts.PolicyInterval,
		Values:         values,
	})
}

// Search calls the backend in a new goroutine. The returned channel receives exactly one value and is
// never closed; the goroutine exits once it has sent it.
func (e *SearchEngine) Search(ctx context.Context, q services.Query, progress chan<- services.ProgressUpdate) <-chan SearchDone {
	done := make(chan SearchDone, 1)
	go func() {
		res, err := e.searcher.Search(ctx, q, progress)
		done <- SearchDone{Result: res, Err: err}
	}()
	return done
}

// Record persists a finished run and returns it. Without a history the run is returned unsaved.
func (e *SearchEngine) Record(o animation.Outcome, s animation.State, res *services.Result) (*models.Run, error) {
	run := &models.Run{
		ID:          o.RunID,
		Query:       s.Query,
		SearchType:  s.SearchType,
		Outcome:     o.Kind.RunOutcome(),
		Elapsed:     o.Elapsed,
		Accelerated: s.Schedule.Accelerated,
	}
	if o.Err != nil {
		run.ErrorKind = o.Err.Type
	}
	if res != nil {
		run.ResponseTime = res.ResponseTime
	}

	if e.history == nil {
		return run, nil
	}
	if err := e.history.Create(run); err != nil {
		return run, err
	}
	e.logger.Debug("run recorded", "run", run.ID, "sequence", run.Sequence, "outcome", run.Outcome)
	return run, nil
}
