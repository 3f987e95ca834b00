package a11y

import (
	"fmt"

	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/stages"
)

// Key is a key the coordinator may consume.
type Key int

const (
	KeyTab Key = iota
	KeyShiftTab
	KeyEscape
)

// Controller is the part of [animation.Controller] the coordinator needs.
type Controller interface {
	Store() *animation.Store
	Phase() animation.Phase
	Cancel() bool
	Cancellable() bool
}

// Coordinator keeps the focus trap and live region in step with an animation store.
type Coordinator struct {
	ctrl    Controller
	clock   scheduler.Clock
	trap    *Trap
	region  *Region
	catalog []models.Stage

	warned      bool
	unsubscribe func()
}

// NewCoordinator subscribes to ctrl's store. Call [Coordinator.Detach] to stop observing.
func NewCoordinator(ctrl Controller, clock scheduler.Clock, host FocusHost, region *Region) *Coordinator {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	if region == nil {
		region = NewRegion()
	}
	c := &Coordinator{
		ctrl:    ctrl,
		clock:   clock,
		trap:    NewTrap(host),
		region:  region,
		catalog: stages.Catalog(),
	}
	c.unsubscribe = ctrl.Store().Subscribe(c.observe)
	return c
}

func (c *Coordinator) Trap() *Trap     { return c.trap }
func (c *Coordinator) Region() *Region { return c.region }

// Detach stops observing the store and releases focus.
func (c *Coordinator) Detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.trap.Deactivate()
}

// Flush announces queued polite messages that are due.
func (c *Coordinator) Flush() int {
	return c.region.Flush(c.clock.Now())
}

// HandleKey routes a key and reports whether it was consumed.
//
// Tab traversal wraps inside the container while trapped. Escape cancels a running or failed run when
// cancellation is available.
func (c *Coordinator) HandleKey(k Key) bool {
	if !c.trap.Active() {
		return false
	}
	switch k {
	case KeyTab:
		return c.trap.Cycle(Forward)
	case KeyShiftTab:
		return c.trap.Cycle(Backward)
	case KeyEscape:
		if !c.ctrl.Cancellable() {
			return false
		}
		switch c.ctrl.Phase() {
		case animation.PhaseRunning, animation.PhaseErrored:
			return c.ctrl.Cancel()
		}
	}
	return false
}

func (c *Coordinator) observe(ev animation.Event, s animation.State) {
	now := c.clock.Now()
	switch ev.Kind {
	case animation.EventStarted:
		c.warned = false
		c.region.Clear()
		c.trap.Activate()
		c.region.Polite(fmt.Sprintf("Searching for %q", s.Query), now)
	case animation.EventStageActivated:
		if st, ok := stages.Find(c.catalog, ev.Stage); ok {
			c.region.Polite(fmt.Sprintf("Step %d of %d: %s", ev.Stage, len(c.catalog), st.Title), now)
		}
	case animation.EventSlowChanged:
		// The cancel affordance appears with the slow signals.
		c.trap.Refocus()
		if s.Slow.ShowSlowWarning && !c.warned {
			c.warned = true
			c.region.Polite("This is taking longer than usual", now)
		}
	case animation.EventCompleted:
		c.region.Drop()
		c.region.Polite("Search complete", now)
		c.trap.Deactivate()
	case animation.EventCancelled:
		c.region.Drop()
		c.region.Polite("Search cancelled", now)
		c.trap.Deactivate()
	case animation.EventFailed:
		if s.Error != nil {
			c.region.Assertive(s.Error.UserMessage, now)
		}
		c.trap.Refocus()
	case animation.EventReset, animation.EventUnmounted:
		c.region.Clear()
		c.trap.Deactivate()
	default:
		c.region.Flush(now)
	}
}
