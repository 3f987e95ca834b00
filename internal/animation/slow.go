package animation

import "time"

const (
	// RotationStart is how long stage 2 may run before status messages rotate.
	RotationStart = 5 * time.Second
	// RotationEvery is the interval between rotated messages.
	RotationEvery = 2 * time.Second
	// CancelAfter is when the cancel affordance appears.
	CancelAfter = 8 * time.Second
	// WarningAfter is when the slow response warning appears.
	WarningAfter = 10 * time.Second
	// EnhancedCancelAfter is when the cancel affordance becomes prominent.
	EnhancedCancelAfter = 15 * time.Second
)

// RotationMessages cycle while stage 2 runs long.
var RotationMessages = []string{
	"Still searching…",
	"Checking more sources…",
	"Sifting through candidates…",
	"Almost there…",
}

// SlowSignals are the slow response policy's outputs.
type SlowSignals struct {
	Rotating        bool
	Message         string
	ShowCancel      bool
	ShowSlowWarning bool
	EnhancedCancel  bool
}

// EvaluateSlow computes the signals for a run that has been going for elapsed with the given stage
// active (0 when none is).
func EvaluateSlow(elapsed time.Duration, activeStage int) SlowSignals {
	var s SlowSignals
	if elapsed >= RotationStart && activeStage == 2 {
		s.Rotating = true
		i := int((elapsed-RotationStart)/RotationEvery) % len(RotationMessages)
		s.Message = RotationMessages[i]
	}
	s.ShowCancel = elapsed >= CancelAfter
	s.ShowSlowWarning = elapsed >= WarningAfter
	s.EnhancedCancel = elapsed >= EnhancedCancelAfter
	return s
}

// Latch merges next into s. Rotation follows next; the cancel and warning flags never switch back off
// within a run.
func (s SlowSignals) Latch(next SlowSignals) SlowSignals {
	return SlowSignals{
		Rotating:        next.Rotating,
		Message:         next.Message,
		ShowCancel:      s.ShowCancel || next.ShowCancel,
		ShowSlowWarning: s.ShowSlowWarning || next.ShowSlowWarning,
		EnhancedCancel:  s.EnhancedCancel || next.EnhancedCancel,
	}
}
