package animation

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/stages"
)

const (
	// DefaultSubStepDelay is the interval between sub-step reveals within a stage.
	DefaultSubStepDelay = 300 * time.Millisecond
	// DefaultPolicyInterval is how often the slow response policy is evaluated.
	DefaultPolicyInterval = time.Second
)

// Phase is the lifecycle position of a [Controller].
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseCancelled
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	case PhaseErrored:
		return "errored"
	default:
		return ""
	}
}

// Inputs describe one run.
type Inputs struct {
	Query      string
	SearchType models.SearchType
	// EstimatedDuration rescales the nominal stage durations to sum to it when positive.
	EstimatedDuration time.Duration
	// ActualResponseTime is the measured backend response time; non-positive means not measured.
	ActualResponseTime time.Duration
	// DisableAcceleration turns the fast response policy off.
	DisableAcceleration bool
	// Values overrides the controller's value source for this run.
	Values ValueSource
}

// Options configure a [Controller]. Zero values select defaults.
type Options struct {
	Clock          scheduler.Clock
	Scheduler      *scheduler.Scheduler
	Catalog        []models.Stage
	Notifier       Notifier
	Logger         *log.Logger
	SubStepDelay   time.Duration // negative reveals all sub-steps on activation
	PolicyInterval time.Duration
	Values         ValueSource
}

// Controller drives the animation state of consecutive runs.
//
// It is not safe for concurrent use: every method, and every action on its scheduler, must run on one
// goroutine, typically a [scheduler.Loop] or a bubbletea update loop.
type Controller struct {
	clock          scheduler.Clock
	sched          *scheduler.Scheduler
	catalog        []models.Stage
	notifier       Notifier
	logger         *log.Logger
	subStepDelay   time.Duration
	policyInterval time.Duration
	values         ValueSource

	store     *Store
	phase     Phase
	runID     string
	inputs    Inputs
	runStages []models.Stage
	startedAt time.Time
	delivered map[OutcomeKind]bool
}

// NewController validates the catalog and returns an idle controller.
func NewController(opts Options) (*Controller, error) {
	c := &Controller{
		clock:          opts.Clock,
		sched:          opts.Scheduler,
		catalog:        opts.Catalog,
		notifier:       opts.Notifier,
		logger:         opts.Logger,
		subStepDelay:   opts.SubStepDelay,
		policyInterval: opts.PolicyInterval,
		values:         opts.Values,
		store:          newStore(),
	}
	if c.clock == nil {
		c.clock = scheduler.RealClock{}
	}
	if c.sched == nil {
		c.sched = scheduler.New()
	}
	if c.catalog == nil {
		c.catalog = stages.Catalog()
	}
	if err := stages.Validate(c.catalog); err != nil {
		return nil, err
	}
	if c.logger == nil {
		c.logger = shared.DiscardLogger()
	}
	if c.subStepDelay == 0 {
		c.subStepDelay = DefaultSubStepDelay
	}
	if c.policyInterval <= 0 {
		c.policyInterval = DefaultPolicyInterval
	}
	if c.values == nil {
		c.values = EstimatedValues{}
	}
	return c, nil
}

// Store returns the controller's observable state.
func (c *Controller) Store() *Store { return c.store }

// Scheduler returns the scheduler the controller arms.
func (c *Controller) Scheduler() *scheduler.Scheduler { return c.sched }

// Clock returns the controller's time source.
func (c *Controller) Clock() scheduler.Clock { return c.clock }

// Phase returns the lifecycle position.
func (c *Controller) Phase() Phase { return c.phase }

// RunID returns the id of the current or most recent run.
func (c *Controller) RunID() string { return c.runID }

// SetNotifier replaces the outcome receiver for subsequent deliveries.
func (c *Controller) SetNotifier(n Notifier) { c.notifier = n }

// Cancellable reports whether the current notifier accepts cancellation.
func (c *Controller) Cancellable() bool {
	if g, ok := c.notifier.(CancelGate); ok {
		return g.Cancellable()
	}
	return true
}

// Start begins a new run and activates stage 1 immediately. It reports false when a run is
// already in progress.
func (c *Controller) Start(in Inputs) bool {
	if c.phase == PhaseRunning {
		c.logger.Debug("start ignored, run in progress", "run", c.runID)
		return false
	}
	if in.SearchType == "" {
		in.SearchType = models.SearchHybrid
	}

	c.sched.Clear()
	c.runID = shared.GenerateID()
	c.inputs = in
	c.delivered = make(map[OutcomeKind]bool, 3)
	c.startedAt = c.clock.Now()
	c.runStages = stages.ScaleTo(c.catalog, in.EstimatedDuration)
	schedule := stages.ComputeSchedule(c.runStages, in.ActualResponseTime, !in.DisableAcceleration)
	c.phase = PhaseRunning

	c.logger.Info("run started",
		"run", c.runID,
		"type", in.SearchType,
		"total", shared.FormatMillis(schedule.Total),
		"accelerated", schedule.Accelerated,
	)

	c.store.update(Event{Kind: EventStarted}, func(s *State) {
		*s = c.freshState(schedule)
	})

	c.arm(schedule)
	c.sched.RunDue(c.startedAt)
	return true
}

// Complete ends the run successfully, fast-forwarding any stages that have not finished.
//
// It applies only while running; otherwise it reports false.
func (c *Controller) Complete() bool {
	if c.phase != PhaseRunning {
		return false
	}
	c.sched.Clear()
	c.phase = PhaseCompleted
	at := c.clock.Now()

	snap := c.store.state
	for i, st := range snap.StageStatuses {
		id := i + 1
		if st == models.StagePending {
			c.activateStage(id, at)
		}
		if c.store.state.Status(id) == models.StageActive {
			c.completeStage(id, at)
		}
	}

	c.store.update(Event{Kind: EventCompleted, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		s.Elapsed = at.Sub(c.startedAt)
		s.IsComplete = true
		s.IsAnimating = false
	})
	c.logger.Info("run completed", "run", c.runID, "elapsed", shared.FormatMillis(at.Sub(c.startedAt)))
	c.deliver(OutcomeComplete, nil, at)
	return true
}

// Cancel aborts a running run, or abandons one that has failed.
func (c *Controller) Cancel() bool {
	if c.phase != PhaseRunning && c.phase != PhaseErrored {
		return false
	}
	c.sched.Clear()
	from := c.phase
	c.phase = PhaseCancelled
	at := c.clock.Now()

	c.store.update(Event{Kind: EventCancelled, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		if from == PhaseRunning {
			s.Elapsed = at.Sub(c.startedAt)
		}
		s.IsCancelled = true
		s.IsAnimating = false
	})
	c.logger.Info("run cancelled", "run", c.runID, "from", from)
	c.deliver(OutcomeCancelled, nil, at)
	return true
}

// SetProgress pushes an external progress value. Values are clamped to [0, 100]; reaching 100
// completes the run.
func (c *Controller) SetProgress(p float64) {
	if c.phase != PhaseRunning {
		return
	}
	p = max(0, min(p, 100))
	c.store.update(Event{Kind: EventProgress}, func(s *State) {
		s.ExternalProgress = p
		s.HasExternalProgress = true
	})
	if p >= 100 {
		c.Complete()
	}
}

// Fail classifies err and moves the run into the error state.
func (c *Controller) Fail(err error) bool {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return c.fail(recovery.Classify(err), err)
}

// FailKind moves the run into the error state for a named error kind. Unknown names map to
// [models.ErrorUnknown].
func (c *Controller) FailKind(kind string) bool {
	return c.fail(recovery.ParseKind(kind), nil)
}

func (c *Controller) fail(kind models.ErrorKind, cause error) bool {
	if c.phase != PhaseRunning {
		return false
	}
	c.sched.Clear()
	c.phase = PhaseErrored
	at := c.clock.Now()

	stage := c.errorStage(kind)
	ae := recovery.New(kind, stage, cause)

	c.store.update(Event{Kind: EventFailed, Stage: stage, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		s.Elapsed = at.Sub(c.startedAt)
		s.Error = ae
		if stage >= 1 && stage <= len(s.StageStatuses) {
			s.StageStatuses[stage-1] = models.StageError
		}
	})
	c.logger.Warn("run failed", "run", c.runID, "kind", kind, "stage", stage, "cause", ae.Message)
	c.deliver(OutcomeFailed, ae.Clone(), at)
	return true
}

// errorStage binds an error to the stage that was running. Before any activation this is the
// searching stage; after every stage finished it is the kind's own stage.
func (c *Controller) errorStage(kind models.ErrorKind) int {
	s := c.store.state
	if id := s.ActiveStage(); id > 0 {
		return id
	}
	if s.CurrentStage == 0 {
		return stages.SearchingStage
	}
	return recovery.Lookup(kind).Stage
}

// Reset clears timers and returns to the idle state. It delivers nothing.
func (c *Controller) Reset() {
	c.clear(EventReset)
}

// Unmount releases the controller's timers. No outcome is delivered afterwards for the current run.
func (c *Controller) Unmount() {
	c.clear(EventUnmounted)
}

func (c *Controller) clear(kind EventKind) {
	n := c.sched.Clear()
	if c.phase != PhaseIdle {
		c.logger.Debug("controller cleared", "run", c.runID, "event", kind, "timers", n)
	}
	c.phase = PhaseIdle
	c.delivered = nil
	c.store.update(Event{Kind: kind}, func(s *State) {
		*s = State{}
	})
}

func (c *Controller) freshState(schedule models.Schedule) State {
	n := len(c.runStages)
	s := State{
		RunID:            c.runID,
		Query:            c.inputs.Query,
		SearchType:       c.inputs.SearchType,
		IsAnimating:      true,
		StageStatuses:    make([]models.StageStatus, n),
		RevealedSubSteps: make([]int, n),
		SubStepTotals:    make([]int, n),
		DynamicValues:    make(map[models.SubStepKey]string),
		Schedule:         schedule,
	}
	for i, st := range c.runStages {
		s.SubStepTotals[i] = len(st.SubSteps)
	}
	return s
}

// arm registers every stage transition and the first policy tick of the current run.
func (c *Controller) arm(schedule models.Schedule) {
	run := c.runID
	var offset time.Duration
	for i, timing := range schedule.Stages {
		id := timing.ID
		begin := c.startedAt.Add(offset)
		c.sched.At(begin, fmt.Sprintf("stage-%d-activate", id), c.guard(run, func(at time.Time) {
			if id > 1 {
				c.completeStage(id-1, at)
			}
			c.activateStage(id, at)
		}))

		subs := len(c.runStages[i].SubSteps)
		gap := c.subStepGap(timing.Duration, subs)
		for j := 1; j < subs; j++ {
			c.sched.At(begin.Add(gap*time.Duration(j)), fmt.Sprintf("stage-%d-reveal-%d", id, j), c.guard(run, func(at time.Time) {
				c.revealSubStep(id, j, at)
			}))
		}
		offset += timing.Duration
	}

	if n := len(schedule.Stages); n > 0 {
		last := schedule.Stages[n-1].ID
		c.sched.At(c.startedAt.Add(schedule.Total), fmt.Sprintf("stage-%d-complete", last), c.guard(run, func(at time.Time) {
			c.completeStage(last, at)
		}))
	}
	c.armPolicy(run, c.startedAt.Add(c.policyInterval))
}

func (c *Controller) armPolicy(run string, at time.Time) {
	c.sched.At(at, "slow-policy", c.guard(run, func(at time.Time) {
		c.evaluatePolicy(at)
		c.armPolicy(run, at.Add(c.policyInterval))
	}))
}

// guard drops actions that outlive their run.
func (c *Controller) guard(run string, fn scheduler.Action) scheduler.Action {
	return func(at time.Time) {
		if c.phase != PhaseRunning || c.runID != run {
			return
		}
		fn(at)
	}
}

func (c *Controller) subStepGap(d time.Duration, subs int) time.Duration {
	if subs <= 1 || c.subStepDelay < 0 {
		return 0
	}
	return min(c.subStepDelay, d/time.Duration(subs))
}

func (c *Controller) activateStage(id int, at time.Time) {
	c.store.update(Event{Kind: EventStageActivated, Stage: id, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		s.Elapsed = max(s.Elapsed, at.Sub(c.startedAt))
		s.StageStatuses[id-1] = models.StageActive
		s.CurrentStage = id
		c.reveal(s, id, 1)
	})
}

func (c *Controller) revealSubStep(id, index int, at time.Time) {
	if c.store.state.Status(id) != models.StageActive || c.store.state.Revealed(id) > index {
		return
	}
	c.store.update(Event{Kind: EventSubStepRevealed, Stage: id, SubStep: index, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		s.Elapsed = max(s.Elapsed, at.Sub(c.startedAt))
		c.reveal(s, id, index+1)
	})
}

func (c *Controller) completeStage(id int, at time.Time) {
	if c.store.state.Status(id) != models.StageActive {
		return
	}
	c.store.update(Event{Kind: EventStageCompleted, Stage: id, Elapsed: at.Sub(c.startedAt)}, func(s *State) {
		s.Elapsed = max(s.Elapsed, at.Sub(c.startedAt))
		s.StageStatuses[id-1] = models.StageCompleted
		c.reveal(s, id, s.SubStepTotals[id-1])
	})
}

// reveal raises the visible sub-step count of stage id to n and populates values for newly visible
// dynamic sub-steps. Existing values are never replaced.
func (c *Controller) reveal(s *State, id, n int) {
	n = min(n, s.SubStepTotals[id-1])
	stage := c.runStages[id-1]
	for j := s.RevealedSubSteps[id-1]; j < n; j++ {
		if !stage.SubSteps[j].HasDynamicValue {
			continue
		}
		key := models.SubStepKey{Stage: id, Index: j}
		if _, ok := s.DynamicValues[key]; ok {
			continue
		}
		if v := c.valueSource().Value(key, c.inputs); v != "" {
			s.DynamicValues[key] = v
		}
	}
	s.RevealedSubSteps[id-1] = max(s.RevealedSubSteps[id-1], n)
}

func (c *Controller) valueSource() ValueSource {
	if c.inputs.Values != nil {
		return c.inputs.Values
	}
	return c.values
}

func (c *Controller) evaluatePolicy(at time.Time) {
	elapsed := at.Sub(c.startedAt)
	cur := c.store.state.Slow
	next := cur.Latch(EvaluateSlow(elapsed, c.store.state.ActiveStage()))
	if next == cur {
		c.store.state.Elapsed = max(c.store.state.Elapsed, elapsed)
		return
	}
	c.store.update(Event{Kind: EventSlowChanged, Elapsed: elapsed}, func(s *State) {
		s.Elapsed = max(s.Elapsed, elapsed)
		s.Slow = next
	})
	if next.ShowSlowWarning && !cur.ShowSlowWarning {
		c.logger.Warn("slow response", "run", c.runID, "elapsed", shared.FormatMillis(elapsed))
	}
}

// deliver hands an outcome to the notifier at most once per kind. Complete and Cancelled exclude
// each other within a run.
func (c *Controller) deliver(kind OutcomeKind, ae *models.AnimationError, at time.Time) {
	if c.delivered == nil || c.delivered[kind] {
		return
	}
	if kind != OutcomeFailed && (c.delivered[OutcomeComplete] || c.delivered[OutcomeCancelled]) {
		return
	}
	c.delivered[kind] = true
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(Outcome{Kind: kind, RunID: c.runID, Elapsed: at.Sub(c.startedAt), Err: ae})
}
