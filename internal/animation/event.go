package animation

import "time"

// EventKind identifies the mutation that produced an [Event].
type EventKind int

const (
	EventStarted EventKind = iota
	EventStageActivated
	EventSubStepRevealed
	EventStageCompleted
	EventSlowChanged
	EventProgress
	EventCompleted
	EventCancelled
	EventFailed
	EventReset
	EventUnmounted
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStageActivated:
		return "stage_activated"
	case EventSubStepRevealed:
		return "sub_step_revealed"
	case EventStageCompleted:
		return "stage_completed"
	case EventSlowChanged:
		return "slow_changed"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	case EventReset:
		return "reset"
	case EventUnmounted:
		return "unmounted"
	default:
		return ""
	}
}

// Terminal reports whether the event ends a run.
func (k EventKind) Terminal() bool {
	return k == EventCompleted || k == EventCancelled || k == EventFailed
}

// Event describes one mutation of the animation state.
type Event struct {
	Kind    EventKind
	RunID   string
	Stage   int           // stage id for stage and sub-step events
	SubStep int           // zero-based sub-step index for [EventSubStepRevealed]
	Elapsed time.Duration // logical time since the run started
}
