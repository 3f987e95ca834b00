package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/searchviz/internal/a11y"
	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/services"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/tasks"
)

// cancelElement is the focus id of the cancel affordance.
const cancelElement = "cancel"

type pendingRecord struct {
	outcome animation.Outcome
	state   animation.State
	result  *services.Result
}

// Model represents the TUI application state.
//
// The bubbletea update loop is the controller's only goroutine: scheduler deadlines come back as
// [MsgTick] messages and search results as [MsgSearchDone].
type Model struct {
	ctx    context.Context
	engine *tasks.SearchEngine
	query  services.Query
	logger *log.Logger

	clock  scheduler.Clock
	sched  *scheduler.Scheduler
	ctrl   *animation.Controller
	values *tasks.ResultValues
	coord  *a11y.Coordinator
	focus  *a11y.Focus

	state        animation.State
	announcement string
	pending      []pendingRecord
	outcome      *animation.Outcome
	result       *services.Result
	lastRun      *models.Run
	navigate     string

	searchCtx    context.Context
	cancelSearch context.CancelFunc
	progressChan chan services.ProgressUpdate

	armed    bool
	armedGen uint64
	armedAt  time.Time
	flushing bool
	spinning bool
	quitting bool

	width int
	spin  spinner.Model
	bar   progress.Model
	help  help.Model
	keys  keyMap
}

// NewModel creates a new TUI model that searches for q with engine.
func NewModel(ctx context.Context, engine *tasks.SearchEngine, q services.Query, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	m := &Model{
		ctx:    ctx,
		engine: engine,
		query:  q,
		logger: logger,
		clock:  engine.Clock(),
		sched:  scheduler.New(),
		values: tasks.NewResultValues(),
		focus:  &a11y.Focus{},
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.active)),
		bar:    progress.New(progress.WithSolidFill(progressFill), progress.WithoutPercentage()),
		help:   help.New(),
		keys:   newKeyMap(),
	}
	m.bar.Width = 40

	notifier := animation.Callbacks{OnComplete: m.onOutcome, OnCancel: m.onOutcome, OnError: m.onOutcome}
	ctrl, err := engine.NewController(m.sched, notifier, m.values)
	if err != nil {
		return nil, err
	}
	m.ctrl = ctrl

	// The view's copy must be current before the coordinator reads focusable elements.
	ctrl.Store().Subscribe(func(ev animation.Event, s animation.State) {
		if ev.Kind != animation.EventUnmounted {
			m.state = s
		}
	})

	region := a11y.NewRegion()
	region.OnAnnounce(func(a a11y.Announcement) { m.announcement = a.Text })
	m.coord = a11y.NewCoordinator(ctrl, m.clock, a11y.NewRing(m.focus, m.focusables), region)
	return m, nil
}

// Init starts the first run.
func (m *Model) Init() tea.Cmd {
	return m.settle(m.start())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(max(msg.Width-12, 10), 60)
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.state.IsAnimating || m.state.Error != nil {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.settle(m.handleKey(msg))

	case Msg:
		return m, m.settle(m.handleMsg(msg))
	}
	return m, nil
}

// Outcome returns the outcome of the most recent run, if it has finished.
func (m *Model) Outcome() (animation.Outcome, bool) {
	if m.outcome == nil {
		return animation.Outcome{}, false
	}
	return *m.outcome, true
}

// Result returns the backend result of the most recent run.
func (m *Model) Result() *services.Result { return m.result }

// Run returns the most recently recorded run.
func (m *Model) Run() *models.Run { return m.lastRun }

// Navigate returns the navigation target chosen from an error panel, or "".
func (m *Model) Navigate() string { return m.navigate }

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quit()
	case key.Matches(msg, m.keys.next):
		m.coord.HandleKey(a11y.KeyTab)
	case key.Matches(msg, m.keys.prev):
		m.coord.HandleKey(a11y.KeyShiftTab)
	case key.Matches(msg, m.keys.cancel):
		if !m.coord.HandleKey(a11y.KeyEscape) && m.finished() {
			m.quit()
		}
	case key.Matches(msg, m.keys.choose):
		return m.activate(m.focus.Focused())
	case key.Matches(msg, m.keys.again):
		if m.finished() {
			return m.start()
		}
	}
	return nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgTick:
		t := msg.data.(tick)
		if m.armed && m.armedGen == t.generation && m.armedAt.Equal(t.deadline) {
			m.armed = false
		}
		if t.generation != m.sched.Generation() {
			return nil
		}
		now := m.clock.Now()
		if now.Before(t.deadline) {
			now = t.deadline
		}
		m.sched.RunDue(now)

	case MsgFlush:
		m.flushing = false
		m.coord.Flush()

	case MsgProgressUpdate:
		p := msg.data.(progressPayload)
		if p.run != m.ctrl.RunID() {
			return nil
		}
		m.ctrl.SetProgress(p.update.Percent)
		return waitForProgress(m.searchCtx, p.run, m.progressChan)

	case MsgSearchDone:
		p := msg.data.(donePayload)
		if p.run != m.ctrl.RunID() {
			return nil
		}
		m.cancelSearch()
		m.result = p.done.Result
		if m.ctrl.Phase() != animation.PhaseRunning {
			return nil
		}
		switch err := p.done.Err; {
		case err == nil:
			m.values.SetResult(p.done.Result)
			m.ctrl.Complete()
		case errors.Is(err, context.Canceled):
			m.ctrl.Cancel()
		default:
			m.ctrl.Fail(err)
		}

	case MsgRunRecorded:
		p := msg.data.(recordPayload)
		if p.err != nil {
			m.logger.Warn("failed to record run", "error", p.err)
		}
		m.lastRun = p.run
	}
	return nil
}

// start begins a run and the backend call behind it.
func (m *Model) start() tea.Cmd {
	m.outcome = nil
	m.result = nil
	m.values.SetResult(nil)
	if m.cancelSearch != nil {
		m.cancelSearch()
	}

	in := m.engine.Inputs(m.query)
	in.Values = m.values
	if !m.ctrl.Start(in) {
		return nil
	}
	run := m.ctrl.RunID()

	m.searchCtx, m.cancelSearch = context.WithCancel(m.ctx)
	m.progressChan = make(chan services.ProgressUpdate, 8)
	done := m.engine.Search(m.searchCtx, m.query, m.progressChan)

	cmds := []tea.Cmd{
		waitForProgress(m.searchCtx, run, m.progressChan),
		waitForDone(run, done),
	}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spin.Tick)
	}
	return tea.Batch(cmds...)
}

// activate performs the focused element's action.
func (m *Model) activate(id string) tea.Cmd {
	if id == cancelElement {
		m.ctrl.Cancel()
		return nil
	}
	if m.state.Error == nil || !m.state.Error.HasAction(id) {
		return nil
	}
	effect, ok := recovery.Resolve(id)
	if !ok {
		return nil
	}
	m.logger.Debug("recovery action", "run", m.ctrl.RunID(), "action", id)

	switch effect.Kind {
	case recovery.EffectRetry:
		return m.start()
	case recovery.EffectAbandon:
		m.ctrl.Cancel()
	case recovery.EffectNavigate:
		m.navigate = effect.Target
		m.ctrl.Cancel()
		m.quitting = true
	}
	return nil
}

func (m *Model) quit() {
	if m.cancelSearch != nil {
		m.cancelSearch()
	}
	m.ctrl.Unmount()
	m.coord.Detach()
	m.quitting = true
}

func (m *Model) finished() bool {
	switch m.ctrl.Phase() {
	case animation.PhaseCompleted, animation.PhaseCancelled, animation.PhaseIdle:
		return true
	}
	return false
}

func (m *Model) onOutcome(o animation.Outcome) {
	m.outcome = &o
	m.pending = append(m.pending, pendingRecord{outcome: o, state: m.ctrl.Store().Snapshot(), result: m.result})
	if o.Kind == animation.OutcomeCancelled && m.cancelSearch != nil {
		m.cancelSearch()
	}
}

// focusables lists the focus ring's elements in traversal order.
func (m *Model) focusables() []string {
	aff := animation.VisibleAffordances(m.state, m.ctrl.Cancellable())
	switch {
	case aff.ShowError:
		ids := make([]string, len(aff.Actions))
		for i, a := range aff.Actions {
			ids[i] = a.ID
		}
		return ids
	case aff.ShowCancel:
		return []string{cancelElement}
	}
	return nil
}

// settle follows every update with the commands it implies: the next scheduler tick, the next live
// region flush and the persistence of delivered outcomes.
func (m *Model) settle(cmd tea.Cmd) tea.Cmd {
	cmds := []tea.Cmd{cmd}
	for _, p := range m.pending {
		cmds = append(cmds, m.record(p))
	}
	m.pending = nil

	if m.quitting {
		return tea.Sequence(tea.Batch(cmds...), tea.Quit)
	}
	cmds = append(cmds, m.arm(), m.armFlush())
	return tea.Batch(cmds...)
}

func (m *Model) arm() tea.Cmd {
	next, ok := m.sched.Next()
	if !ok {
		return nil
	}
	gen := m.sched.Generation()
	if m.armed && m.armedGen == gen && !next.Before(m.armedAt) {
		return nil
	}
	m.armed, m.armedGen, m.armedAt = true, gen, next
	return tea.Tick(max(next.Sub(m.clock.Now()), 0), func(time.Time) tea.Msg {
		return tickMsg(gen, next)
	})
}

func (m *Model) armFlush() tea.Cmd {
	if m.flushing {
		return nil
	}
	now := m.clock.Now()
	at, ok := m.coord.Region().NextAt(now)
	if !ok {
		return nil
	}
	m.flushing = true
	return tea.Tick(max(at.Sub(now), 0), func(time.Time) tea.Msg { return flushMsg() })
}

func (m *Model) record(p pendingRecord) tea.Cmd {
	return func() tea.Msg {
		run, err := m.engine.Record(p.outcome, p.state, p.result)
		return runRecordedMsg(run, err)
	}
}

func waitForProgress(ctx context.Context, run string, ch <-chan services.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-ch:
			return progressUpdateMsg(run, u)
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForDone(run string, done <-chan tasks.SearchDone) tea.Cmd {
	return func() tea.Msg {
		return searchDoneMsg(run, <-done)
	}
}
