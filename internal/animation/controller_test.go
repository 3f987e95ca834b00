package animation

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/shared"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type rig struct {
	t        *testing.T
	clock    *scheduler.FakeClock
	ctrl     *Controller
	outcomes []Outcome
	events   []Event
}

func newRig(t *testing.T, opts Options) *rig {
	t.Helper()
	r := &rig{t: t, clock: scheduler.NewFakeClock(epoch)}
	opts.Clock = r.clock
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(o Outcome) { r.outcomes = append(r.outcomes, o) })
	}
	ctrl, err := NewController(opts)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	r.ctrl = ctrl
	ctrl.Store().Subscribe(func(ev Event, s State) {
		r.events = append(r.events, ev)
		active := 0
		for _, st := range s.StageStatuses {
			if st == models.StageActive {
				active++
			}
		}
		if active > 1 {
			t.Errorf("%v event left %d stages active", ev.Kind, active)
		}
	})
	return r
}

// advanceTo moves the fake clock to offset from run start and fires due actions.
func (r *rig) advanceTo(offset time.Duration) {
	now := epoch.Add(offset)
	r.clock.Set(now)
	r.ctrl.Scheduler().RunDue(now)
}

func (r *rig) state() State { return r.ctrl.Store().Snapshot() }

func (r *rig) outcomeKinds() []OutcomeKind {
	var kinds []OutcomeKind
	for _, o := range r.outcomes {
		kinds = append(kinds, o.Kind)
	}
	return kinds
}

func statuses(s State) []models.StageStatus { return s.StageStatuses }

func TestControllerStart(t *testing.T) {
	t.Run("activates stage one immediately", func(t *testing.T) {
		r := newRig(t, Options{})
		if !r.ctrl.Start(Inputs{Query: "red shoes"}) {
			t.Fatal("Start() = false, want true")
		}

		s := r.state()
		if !s.IsAnimating || s.CurrentStage != 1 {
			t.Fatalf("IsAnimating = %v CurrentStage = %d, want true 1", s.IsAnimating, s.CurrentStage)
		}
		want := []models.StageStatus{models.StageActive, models.StagePending, models.StagePending, models.StagePending, models.StagePending}
		if !slices.Equal(statuses(s), want) {
			t.Errorf("statuses = %v, want %v", statuses(s), want)
		}
		if got := s.Revealed(1); got != 1 {
			t.Errorf("Revealed(1) = %d, want 1", got)
		}
		if s.SearchType != models.SearchHybrid {
			t.Errorf("SearchType = %q, want hybrid default", s.SearchType)
		}
		if r.ctrl.Phase() != PhaseRunning {
			t.Errorf("Phase() = %v, want running", r.ctrl.Phase())
		}
	})

	t.Run("ignored while running", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "a"})
		id := r.ctrl.RunID()
		r.advanceTo(500 * time.Millisecond)

		if r.ctrl.Start(Inputs{Query: "b"}) {
			t.Error("second Start() = true, want false")
		}
		if r.ctrl.RunID() != id || r.state().Query != "a" {
			t.Error("second Start() replaced the running run")
		}
	})

	t.Run("restart after completion discards old timers", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "first"})
		r.advanceTo(time.Second)
		r.ctrl.Complete()
		first := r.ctrl.RunID()

		if !r.ctrl.Start(Inputs{Query: "second"}) {
			t.Fatal("Start() after completion = false")
		}
		if r.ctrl.RunID() == first {
			t.Fatal("restart reused the run id")
		}
		s := r.state()
		if s.CurrentStage != 1 || s.IsComplete || s.Status(2) != models.StagePending {
			t.Errorf("restart state = stage %d complete %v, want fresh run", s.CurrentStage, s.IsComplete)
		}
		if len(r.outcomes) != 1 {
			t.Errorf("outcomes = %v, want only the first run's completion", r.outcomeKinds())
		}
	})
}

func TestControllerTimeline(t *testing.T) {
	r := newRig(t, Options{})
	r.ctrl.Start(Inputs{Query: "laptops under 1000"})

	steps := []struct {
		at       time.Duration
		current  int
		revealed []int
		statuses []models.StageStatus
	}{
		{300 * time.Millisecond, 1, []int{2, 0, 0, 0, 0}, nil},
		{600 * time.Millisecond, 1, []int{3, 0, 0, 0, 0}, nil},
		{1200 * time.Millisecond, 2, []int{3, 1, 0, 0, 0}, []models.StageStatus{models.StageCompleted, models.StageActive, models.StagePending, models.StagePending, models.StagePending}},
		{1500 * time.Millisecond, 2, []int{3, 2, 0, 0, 0}, nil},
		{3200 * time.Millisecond, 3, []int{3, 2, 1, 0, 0}, nil},
		{4700 * time.Millisecond, 4, []int{3, 2, 2, 1, 0}, nil},
		{5700 * time.Millisecond, 5, []int{3, 2, 2, 2, 1}, nil},
		{6500 * time.Millisecond, 5, []int{3, 2, 2, 2, 2}, []models.StageStatus{models.StageCompleted, models.StageCompleted, models.StageCompleted, models.StageCompleted, models.StageCompleted}},
	}

	for _, step := range steps {
		r.advanceTo(step.at)
		s := r.state()
		if s.CurrentStage != step.current {
			t.Errorf("at %v CurrentStage = %d, want %d", step.at, s.CurrentStage, step.current)
		}
		if !slices.Equal(s.RevealedSubSteps, step.revealed) {
			t.Errorf("at %v revealed = %v, want %v", step.at, s.RevealedSubSteps, step.revealed)
		}
		if step.statuses != nil && !slices.Equal(s.StageStatuses, step.statuses) {
			t.Errorf("at %v statuses = %v, want %v", step.at, s.StageStatuses, step.statuses)
		}
	}

	t.Run("holds on the last stage until completion", func(t *testing.T) {
		r.advanceTo(9 * time.Second)
		s := r.state()
		if !s.IsAnimating || s.IsComplete {
			t.Errorf("IsAnimating = %v IsComplete = %v, want animation held", s.IsAnimating, s.IsComplete)
		}
		if len(r.outcomes) != 0 {
			t.Errorf("outcomes = %v before Complete()", r.outcomeKinds())
		}
	})

	t.Run("stage indices never move backwards", func(t *testing.T) {
		last := 0
		for _, ev := range r.events {
			if ev.Kind != EventStageActivated {
				continue
			}
			if ev.Stage != last+1 {
				t.Errorf("activated stage %d after %d", ev.Stage, last)
			}
			last = ev.Stage
		}
		if last != models.StageCount {
			t.Errorf("last activated stage = %d, want %d", last, models.StageCount)
		}
	})
}

func TestDynamicValues(t *testing.T) {
	calls := map[models.SubStepKey]int{}
	values := ValueFunc(func(key models.SubStepKey, in Inputs) string {
		calls[key]++
		return FormatCount(1000 * key.Stage)
	})

	r := newRig(t, Options{Values: values})
	r.ctrl.Start(Inputs{Query: "q"})
	key := models.SubStepKey{Stage: 2, Index: 1}

	r.advanceTo(1400 * time.Millisecond)
	if _, ok := r.state().Value(key); ok {
		t.Fatal("value populated before its sub-step was revealed")
	}

	r.advanceTo(1500 * time.Millisecond)
	if v, _ := r.state().Value(key); v != "2,000" {
		t.Errorf("Value(%v) = %q, want 2,000", key, v)
	}

	r.advanceTo(4 * time.Second)
	r.ctrl.Complete()
	for k, n := range calls {
		if n != 1 {
			t.Errorf("value source consulted %d times for %v, want 1", n, k)
		}
	}
	s := r.state()
	if len(s.DynamicValues) != 3 {
		t.Errorf("DynamicValues = %v, want 3 entries", s.DynamicValues)
	}
	if v, _ := s.Value(key); v != "2,000" {
		t.Errorf("value changed after completion: %q", v)
	}

	t.Run("per run override", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q", Values: ValueFunc(func(models.SubStepKey, Inputs) string { return "7" })})
		r.ctrl.Complete()
		if v, _ := r.state().Value(models.SubStepKey{Stage: 5, Index: 1}); v != "7" {
			t.Errorf("Value = %q, want 7", v)
		}
	})

	t.Run("estimates are deterministic", func(t *testing.T) {
		in := Inputs{Query: "coffee grinder", SearchType: models.SearchSemantic}
		a := EstimatedValues{}.Value(key, in)
		b := EstimatedValues{}.Value(key, in)
		if a == "" || a != b {
			t.Errorf("estimates %q and %q, want equal and non-empty", a, b)
		}
	})
}

func TestControllerComplete(t *testing.T) {
	t.Run("fast forwards remaining stages", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.advanceTo(1300 * time.Millisecond)

		if !r.ctrl.Complete() {
			t.Fatal("Complete() = false")
		}
		s := r.state()
		for id := 1; id <= models.StageCount; id++ {
			if s.Status(id) != models.StageCompleted {
				t.Errorf("stage %d = %v, want completed", id, s.Status(id))
			}
			if s.Revealed(id) != s.SubStepTotals[id-1] {
				t.Errorf("stage %d revealed %d of %d", id, s.Revealed(id), s.SubStepTotals[id-1])
			}
		}
		if !s.IsComplete || s.IsAnimating {
			t.Errorf("IsComplete = %v IsAnimating = %v, want true false", s.IsComplete, s.IsAnimating)
		}
		if s.Progress() != 100 {
			t.Errorf("Progress() = %v, want 100", s.Progress())
		}
		if r.ctrl.Scheduler().Pending() != 0 {
			t.Errorf("Pending() = %d after completion", r.ctrl.Scheduler().Pending())
		}
	})

	t.Run("delivers exactly once", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.Complete()
		if r.ctrl.Complete() {
			t.Error("second Complete() = true")
		}
		if r.ctrl.Cancel() {
			t.Error("Cancel() after completion = true")
		}
		r.advanceTo(time.Minute)

		if !slices.Equal(r.outcomeKinds(), []OutcomeKind{OutcomeComplete}) {
			t.Errorf("outcomes = %v, want [complete]", r.outcomeKinds())
		}
		if r.outcomes[0].RunID != r.ctrl.RunID() {
			t.Errorf("outcome run id = %q, want %q", r.outcomes[0].RunID, r.ctrl.RunID())
		}
	})

	t.Run("ignored when idle", func(t *testing.T) {
		r := newRig(t, Options{})
		if r.ctrl.Complete() {
			t.Error("Complete() on idle controller = true")
		}
	})
}

func TestControllerCancel(t *testing.T) {
	t.Run("stops the run", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.advanceTo(2 * time.Second)

		if !r.ctrl.Cancel() {
			t.Fatal("Cancel() = false")
		}
		s := r.state()
		if !s.IsCancelled || s.IsAnimating {
			t.Errorf("IsCancelled = %v IsAnimating = %v", s.IsCancelled, s.IsAnimating)
		}
		before := len(r.events)
		r.advanceTo(time.Minute)
		if len(r.events) != before {
			t.Errorf("%d events after cancellation", len(r.events)-before)
		}
		if r.ctrl.Complete() {
			t.Error("Complete() after Cancel() = true")
		}
		if !slices.Equal(r.outcomeKinds(), []OutcomeKind{OutcomeCancelled}) {
			t.Errorf("outcomes = %v, want [cancelled]", r.outcomeKinds())
		}
	})

	t.Run("twice", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.Cancel()
		if r.ctrl.Cancel() {
			t.Error("second Cancel() = true")
		}
		if len(r.outcomes) != 1 {
			t.Errorf("outcomes = %v", r.outcomeKinds())
		}
	})

	t.Run("abandons a failed run", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.FailKind("timeout")
		if !r.ctrl.Cancel() {
			t.Fatal("Cancel() on failed run = false")
		}
		want := []OutcomeKind{OutcomeFailed, OutcomeCancelled}
		if !slices.Equal(r.outcomeKinds(), want) {
			t.Errorf("outcomes = %v, want %v", r.outcomeKinds(), want)
		}
	})
}

func TestControllerFail(t *testing.T) {
	t.Run("binds to the active stage", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.advanceTo(3300 * time.Millisecond)

		if !r.ctrl.Fail(shared.ErrConnection) {
			t.Fatal("Fail() = false")
		}
		s := r.state()
		if s.Error == nil || s.Error.Type != models.ErrorConnection || s.Error.Stage != 3 {
			t.Fatalf("Error = %+v, want connection at stage 3", s.Error)
		}
		if s.Status(3) != models.StageError || !s.IsAnimating {
			t.Errorf("stage 3 = %v IsAnimating = %v, want error true", s.Status(3), s.IsAnimating)
		}
		if r.ctrl.Phase() != PhaseErrored {
			t.Errorf("Phase() = %v", r.ctrl.Phase())
		}
		if len(r.outcomes) != 1 || r.outcomes[0].Err == nil || r.outcomes[0].Err.Type != models.ErrorConnection {
			t.Errorf("outcomes = %+v", r.outcomes)
		}

		before := len(r.events)
		r.advanceTo(time.Minute)
		if len(r.events) != before {
			t.Error("timers fired after failure")
		}
	})

	t.Run("binding when every stage has finished", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.advanceTo(7 * time.Second)
		r.ctrl.FailKind("no-results")

		s := r.state()
		if want := recovery.Lookup(models.ErrorNoResults).Stage; s.Error.Stage != want {
			t.Errorf("Error.Stage = %d, want %d", s.Error.Stage, want)
		}
	})

	t.Run("unknown kinds", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.FailKind("cosmic_rays")
		if got := r.state().Error.Type; got != models.ErrorUnknown {
			t.Errorf("Error.Type = %q, want unknown", got)
		}
	})

	t.Run("keeps underlying message", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.Fail(errors.New("boom"))
		e := r.state().Error
		if e.Type != models.ErrorUnknown || e.Message != "boom" || e.UserMessage == "" {
			t.Errorf("Error = %+v", e)
		}
	})

	t.Run("ignored unless running", func(t *testing.T) {
		r := newRig(t, Options{})
		if r.ctrl.FailKind("server") {
			t.Error("FailKind() on idle = true")
		}
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.FailKind("server")
		if r.ctrl.FailKind("timeout") {
			t.Error("second FailKind() = true")
		}
		if got := r.state().Error.Type; got != models.ErrorServer {
			t.Errorf("Error.Type = %q, want the first failure", got)
		}
		if len(r.outcomes) != 1 {
			t.Errorf("outcomes = %v", r.outcomeKinds())
		}
	})
}

func TestControllerProgress(t *testing.T) {
	t.Run("clamps", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})

		r.ctrl.SetProgress(-10)
		if got := r.state().Progress(); got != 0 {
			t.Errorf("Progress() = %v, want 0", got)
		}
		r.ctrl.SetProgress(42.5)
		s := r.state()
		if got := s.Progress(); got != 42.5 {
			t.Errorf("Progress() = %v, want 42.5", got)
		}
		if s.CurrentStage != 1 {
			t.Errorf("external progress moved the narrative to stage %d", s.CurrentStage)
		}
	})

	t.Run("100 completes", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		r.ctrl.SetProgress(250)
		if !r.state().IsComplete {
			t.Error("SetProgress(250) did not complete the run")
		}
		if !slices.Equal(r.outcomeKinds(), []OutcomeKind{OutcomeComplete}) {
			t.Errorf("outcomes = %v", r.outcomeKinds())
		}
	})

	t.Run("computed progress is monotonic", func(t *testing.T) {
		r := newRig(t, Options{})
		r.ctrl.Start(Inputs{Query: "q"})
		last := r.state().Progress()
		for ms := 100; ms <= 7000; ms += 100 {
			r.advanceTo(time.Duration(ms) * time.Millisecond)
			p := r.state().Progress()
			if p < last || p > 100 {
				t.Fatalf("at %dms Progress() = %v after %v", ms, p, last)
			}
			last = p
		}
	})
}

func TestControllerAcceleration(t *testing.T) {
	tc := []struct {
		name        string
		in          Inputs
		total       time.Duration
		accelerated bool
	}{
		{"fast response", Inputs{ActualResponseTime: time.Second}, 5200 * time.Millisecond, true},
		{"acceleration disabled", Inputs{ActualResponseTime: time.Second, DisableAcceleration: true}, 6500 * time.Millisecond, false},
		{"slow response", Inputs{ActualResponseTime: 3 * time.Second}, 6500 * time.Millisecond, false},
		{"not measured", Inputs{}, 6500 * time.Millisecond, false},
		{"rescaled estimate", Inputs{EstimatedDuration: 13 * time.Second}, 13 * time.Second, false},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			r := newRig(t, Options{})
			r.ctrl.Start(c.in)
			s := r.state().Schedule
			if s.Total != c.total || s.Accelerated != c.accelerated {
				t.Errorf("schedule = %v accelerated %v, want %v %v", s.Total, s.Accelerated, c.total, c.accelerated)
			}
			if c.accelerated && s.SpeedFactor != 1.25 {
				t.Errorf("SpeedFactor = %v, want 1.25", s.SpeedFactor)
			}
		})
	}
}

func TestControllerSlowPolicy(t *testing.T) {
	r := newRig(t, Options{})
	r.ctrl.Start(Inputs{Query: "q", EstimatedDuration: time.Minute})

	r.advanceTo(7 * time.Second)
	if slow := r.state().Slow; slow.ShowCancel || slow.Rotating {
		t.Errorf("at 7s slow = %+v, want quiet", slow)
	}

	r.advanceTo(8 * time.Second)
	if !r.state().Slow.ShowCancel {
		t.Error("cancel hidden at 8s")
	}

	r.advanceTo(12 * time.Second)
	slow := r.state().Slow
	if !slow.ShowSlowWarning || !slow.Rotating || slow.Message != "Almost there…" {
		t.Errorf("at 12s slow = %+v", slow)
	}

	r.advanceTo(15 * time.Second)
	if !r.state().Slow.EnhancedCancel {
		t.Error("enhanced cancel hidden at 15s")
	}

	r.advanceTo(31 * time.Second)
	slow = r.state().Slow
	if slow.Rotating || !slow.ShowCancel || !slow.EnhancedCancel {
		t.Errorf("after stage 2 slow = %+v, want rotation off and flags latched", slow)
	}

	r.ctrl.Complete()
	if slow := r.state().Slow; !slow.ShowCancel || !slow.ShowSlowWarning || !slow.EnhancedCancel {
		t.Errorf("after completion slow = %+v, want flags still latched", slow)
	}
	if aff := VisibleAffordances(r.state(), true); aff.ShowCancel || aff.ShowSlowWarning {
		t.Errorf("completed run still shows %+v", aff)
	}
}

func TestControllerCompleteKeepsSlowLatches(t *testing.T) {
	r := newRig(t, Options{})
	r.ctrl.Start(Inputs{Query: "q", EstimatedDuration: time.Minute})
	r.advanceTo(16 * time.Second)

	before := r.state().Slow
	if !before.ShowCancel || !before.ShowSlowWarning || !before.EnhancedCancel {
		t.Fatalf("at 16s slow = %+v, want every flag latched", before)
	}

	r.ctrl.Complete()
	after := r.state().Slow
	if after.ShowCancel != before.ShowCancel || after.ShowSlowWarning != before.ShowSlowWarning || after.EnhancedCancel != before.EnhancedCancel {
		t.Errorf("Complete() changed latches from %+v to %+v", before, after)
	}
}

func TestControllerUnmount(t *testing.T) {
	r := newRig(t, Options{})
	r.ctrl.Start(Inputs{Query: "q"})
	r.advanceTo(time.Second)
	r.ctrl.Unmount()

	if r.ctrl.Scheduler().Pending() != 0 {
		t.Errorf("Pending() = %d after Unmount()", r.ctrl.Scheduler().Pending())
	}
	if r.ctrl.Complete() || r.ctrl.Cancel() {
		t.Error("terminal transition accepted after Unmount()")
	}
	if len(r.outcomes) != 0 {
		t.Errorf("outcomes = %v after Unmount()", r.outcomeKinds())
	}
	if s := r.state(); s.IsAnimating || s.RunID != "" {
		t.Errorf("state after Unmount() = %+v", s)
	}
	if r.events[len(r.events)-1].Kind != EventUnmounted {
		t.Errorf("last event = %v", r.events[len(r.events)-1].Kind)
	}
}

func TestNewControllerRejectsBadCatalog(t *testing.T) {
	_, err := NewController(Options{Catalog: []models.Stage{{ID: 1}}})
	if err == nil {
		t.Error("NewController() with a one stage catalog succeeded")
	}
}
