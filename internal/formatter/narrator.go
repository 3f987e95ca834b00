package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/shared"
	"github.com/desertthunder/searchviz/internal/stages"
)

// Narrator turns animation events into plain text lines for non-interactive output.
//
// Only stage activations, revealed sub-steps, changes of the slow response signals and terminal
// outcomes produce lines. Progress ticks are dropped.
type Narrator struct {
	catalog []models.Stage
	slow    animation.SlowSignals
}

// NewNarrator creates a [Narrator] over catalog, defaulting to [stages.Catalog] when nil.
func NewNarrator(catalog []models.Stage) *Narrator {
	if catalog == nil {
		catalog = stages.Catalog()
	}
	return &Narrator{catalog: catalog}
}

// Lines returns the lines describing ev given the state it produced.
func (n *Narrator) Lines(ev animation.Event, s animation.State) []string {
	at := "+" + shared.FormatMillis(ev.Elapsed)
	switch ev.Kind {
	case animation.EventStarted:
		n.slow = animation.SlowSignals{}
		line := fmt.Sprintf("%s searching %q (%s, %s planned)", at, s.Query, s.SearchType, shared.FormatMillis(s.Schedule.Total))
		if s.Schedule.Accelerated {
			line += fmt.Sprintf(", accelerated ×%.2f", s.Schedule.SpeedFactor)
		}
		return []string{line}
	case animation.EventStageActivated:
		stage, _ := stages.Find(n.catalog, ev.Stage)
		return []string{fmt.Sprintf("%s [%d/%d] %s %s", at, ev.Stage, len(n.catalog), stage.Icon, stage.Title)}
	case animation.EventSubStepRevealed:
		stage, ok := stages.Find(n.catalog, ev.Stage)
		if !ok || ev.SubStep >= len(stage.SubSteps) {
			return nil
		}
		value, _ := s.Value(models.SubStepKey{Stage: ev.Stage, Index: ev.SubStep})
		return []string{fmt.Sprintf("%s       %s", at, stages.Render(stage.SubSteps[ev.SubStep], value))}
	case animation.EventSlowChanged:
		return n.slowLines(at, s.Slow)
	case animation.EventCompleted:
		return []string{at + " search complete"}
	case animation.EventCancelled:
		return []string{at + " search cancelled"}
	case animation.EventFailed:
		if s.Error == nil {
			return []string{at + " search failed"}
		}
		lines := []string{fmt.Sprintf("%s search failed at stage %d: %s", at, s.Error.Stage, s.Error.UserMessage)}
		if len(s.Error.Actions) > 0 {
			labels := make([]string, len(s.Error.Actions))
			for i, a := range s.Error.Actions {
				labels[i] = a.Label
			}
			lines = append(lines, fmt.Sprintf("%s options: %s", at, strings.Join(labels, ", ")))
		}
		return lines
	default:
		return nil
	}
}

// Listener returns an [animation.Listener] writing each line to w.
func (n *Narrator) Listener(w io.Writer) animation.Listener {
	return func(ev animation.Event, s animation.State) {
		for _, line := range n.Lines(ev, s) {
			fmt.Fprintln(w, line)
		}
	}
}

func (n *Narrator) slowLines(at string, next animation.SlowSignals) []string {
	prev := n.slow
	n.slow = next

	var lines []string
	if next.Rotating && next.Message != prev.Message {
		lines = append(lines, at+"       "+next.Message)
	}
	if next.ShowCancel && !prev.ShowCancel {
		lines = append(lines, at+" press Ctrl+C to cancel")
	}
	if next.ShowSlowWarning && !prev.ShowSlowWarning {
		lines = append(lines, at+" this is taking longer than usual")
	}
	return lines
}
