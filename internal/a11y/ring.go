package a11y

import "slices"

// FocusOwner reports and moves focus by element id.
type FocusOwner interface {
	Focused() string
	Focus(id string)
}

// Focus is a minimal [FocusOwner] for toolkits without a focus model of their own.
type Focus struct {
	id string
}

func (f *Focus) Focused() string { return f.id }
func (f *Focus) Focus(id string) { f.id = id }

// Ring is a [FocusHost] over a dynamic list of element ids.
type Ring struct {
	owner    FocusOwner
	elements func() []string
	previous string
	captured bool
}

var (
	_ FocusHost = (*Ring)(nil)
	_ Refocuser = (*Ring)(nil)
)

// NewRing returns a ring whose elements are read from elements on every traversal.
func NewRing(owner FocusOwner, elements func() []string) *Ring {
	return &Ring{owner: owner, elements: elements}
}

func (r *Ring) CaptureFocus() {
	if !r.captured {
		r.previous = r.owner.Focused()
		r.captured = true
	}
	r.focusFirst()
}

func (r *Ring) ReleaseFocus() {
	if !r.captured {
		return
	}
	r.captured = false
	r.owner.Focus(r.previous)
}

func (r *Ring) Cycle(d Direction) {
	els := r.elements()
	n := len(els)
	if n == 0 {
		return
	}
	i := slices.Index(els, r.owner.Focused())
	switch {
	case i < 0 && d == Backward:
		i = n - 1
	case i < 0:
		i = 0
	case d == Backward:
		i = (i - 1 + n) % n
	default:
		i = (i + 1) % n
	}
	r.owner.Focus(els[i])
}

// Refocus moves focus to the first element when the focused one left the container.
func (r *Ring) Refocus() {
	if !slices.Contains(r.elements(), r.owner.Focused()) {
		r.focusFirst()
	}
}

// Previous returns the element focus returns to on release.
func (r *Ring) Previous() string { return r.previous }

func (r *Ring) focusFirst() {
	if els := r.elements(); len(els) > 0 {
		r.owner.Focus(els[0])
	}
}
