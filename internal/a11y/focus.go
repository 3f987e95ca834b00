package a11y

// Direction of a focus traversal.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// FocusHost is the toolkit-facing capability a [Trap] drives.
type FocusHost interface {
	// CaptureFocus remembers the focused element and moves focus into the container.
	CaptureFocus()
	// ReleaseFocus returns focus to the element remembered by CaptureFocus.
	ReleaseFocus()
	// Cycle moves focus to the next or previous element of the container, wrapping at the ends.
	Cycle(Direction)
}

// Refocuser is implemented by hosts that can recover focus after the container's elements change.
type Refocuser interface {
	Refocus()
}

// Trap contains focus while active.
type Trap struct {
	host   FocusHost
	active bool
}

func NewTrap(host FocusHost) *Trap {
	return &Trap{host: host}
}

// Active reports whether focus is contained.
func (t *Trap) Active() bool { return t.active }

// Activate captures focus. It reports false when already active.
func (t *Trap) Activate() bool {
	if t.active {
		return false
	}
	t.active = true
	t.host.CaptureFocus()
	return true
}

// Deactivate restores the captured focus. It reports false when already inactive.
func (t *Trap) Deactivate() bool {
	if !t.active {
		return false
	}
	t.active = false
	t.host.ReleaseFocus()
	return true
}

// Cycle traverses the container while active.
func (t *Trap) Cycle(d Direction) bool {
	if !t.active {
		return false
	}
	t.host.Cycle(d)
	return true
}

// Refocus moves focus back inside the container when the host supports it.
func (t *Trap) Refocus() {
	if r, ok := t.host.(Refocuser); ok && t.active {
		r.Refocus()
	}
}
