package animation

import (
	"time"

	"github.com/desertthunder/searchviz/internal/models"
)

// OutcomeKind tags an [Outcome].
type OutcomeKind int

const (
	OutcomeComplete OutcomeKind = iota + 1
	OutcomeCancelled
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeComplete:
		return "complete"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return ""
	}
}

// RunOutcome maps the kind onto the persisted run outcome.
func (k OutcomeKind) RunOutcome() models.RunOutcome {
	switch k {
	case OutcomeCancelled:
		return models.RunCancelled
	case OutcomeFailed:
		return models.RunFailed
	default:
		return models.RunCompleted
	}
}

// Outcome is the terminal result of a run. Err is set only for [OutcomeFailed].
type Outcome struct {
	Kind    OutcomeKind
	RunID   string
	Elapsed time.Duration
	Err     *models.AnimationError
}

// Notifier receives run outcomes. Notify is called on the controller's goroutine.
type Notifier interface {
	Notify(Outcome)
}

// CancelGate is implemented by notifiers that decide whether runs may be cancelled at all.
// Notifiers that do not implement it allow cancellation.
type CancelGate interface {
	Cancellable() bool
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }

// Callbacks dispatches outcomes to per-kind handlers; nil handlers are skipped.
//
// A nil OnCancel makes the run non-cancellable.
type Callbacks struct {
	OnComplete func(Outcome)
	OnCancel   func(Outcome)
	OnError    func(Outcome)
}

func (c Callbacks) Notify(o Outcome) {
	var fn func(Outcome)
	switch o.Kind {
	case OutcomeComplete:
		fn = c.OnComplete
	case OutcomeCancelled:
		fn = c.OnCancel
	case OutcomeFailed:
		fn = c.OnError
	}
	if fn != nil {
		fn(o)
	}
}

func (c Callbacks) Cancellable() bool { return c.OnCancel != nil }

// ChanNotifier forwards outcomes to a channel without blocking. When the channel is full the outcome is dropped.
type ChanNotifier chan<- Outcome

func (c ChanNotifier) Notify(o Outcome) {
	select {
	case c <- o:
	default:
	}
}

var (
	_ Notifier   = NotifierFunc(nil)
	_ Notifier   = Callbacks{}
	_ CancelGate = Callbacks{}
	_ Notifier   = ChanNotifier(nil)
)
