package scheduler

import (
	"slices"
	"time"
)

// Action is a deferred callback. It receives the deadline it was scheduled for, which is the logical
// time of the callback regardless of how late the driver delivered it.
type Action func(at time.Time)

type entry struct {
	deadline time.Time
	seq      uint64
	label    string
	fn       Action
}

// Scheduler is a deadline-sorted set of pending actions.
//
// It is not safe for concurrent use; a single driver goroutine owns it.
type Scheduler struct {
	entries    []entry
	seq        uint64
	generation uint64
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// At schedules fn to run once the driver's time reaches deadline.
// Actions with equal deadlines run in the order they were scheduled.
func (s *Scheduler) At(deadline time.Time, label string, fn Action) {
	s.seq++
	e := entry{deadline: deadline, seq: s.seq, label: label, fn: fn}
	i, _ := slices.BinarySearchFunc(s.entries, e, compareEntries)
	s.entries = slices.Insert(s.entries, i, e)
}

// RunDue runs every action whose deadline is at or before now, earliest first, and returns how many ran.
//
// Actions scheduled while sweeping run in the same sweep when they are already due. An action may call
// [Scheduler.Clear], which ends the sweep.
func (s *Scheduler) RunDue(now time.Time) int {
	ran := 0
	for len(s.entries) > 0 && !s.entries[0].deadline.After(now) {
		e := s.entries[0]
		s.entries = slices.Delete(s.entries, 0, 1)
		e.fn(e.deadline)
		ran++
	}
	return ran
}

// Clear drops every pending action, advances the generation and returns the number dropped.
func (s *Scheduler) Clear() int {
	n := len(s.entries)
	s.entries = nil
	s.generation++
	return n
}

// Next returns the earliest pending deadline.
func (s *Scheduler) Next() (time.Time, bool) {
	if len(s.entries) == 0 {
		return time.Time{}, false
	}
	return s.entries[0].deadline, true
}

// Pending returns the number of scheduled actions.
func (s *Scheduler) Pending() int {
	return len(s.entries)
}

// Labels returns the labels of pending actions in run order.
func (s *Scheduler) Labels() []string {
	labels := make([]string, len(s.entries))
	for i, e := range s.entries {
		labels[i] = e.label
	}
	return labels
}

// Generation identifies the current batch of scheduled work. It changes on every [Scheduler.Clear].
func (s *Scheduler) Generation() uint64 {
	return s.generation
}

func compareEntries(a, b entry) int {
	if c := a.deadline.Compare(b.deadline); c != 0 {
		return c
	}
	switch {
	case a.seq < b.seq:
		return -1
	case a.seq > b.seq:
		return 1
	default:
		return 0
	}
}
