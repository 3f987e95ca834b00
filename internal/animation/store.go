package animation

// Listener observes every mutation of a [Store].
//
// Listeners run synchronously on the controller's goroutine and receive their own copy of the state.
// They must not call back into the controller that owns the store.
type Listener func(Event, State)

type subscription struct {
	id int
	fn Listener
}

// Store is the observable container for one controller's [State].
//
// Only the owning controller mutates it; everything else reads copies.
type Store struct {
	state     State
	listeners []subscription
	nextID    int
}

func newStore() *Store {
	return &Store{}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	return s.state.Clone()
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// update applies mutate and notifies listeners in subscription order.
func (s *Store) update(ev Event, mutate func(*State)) {
	mutate(&s.state)
	ev.RunID = s.state.RunID
	if ev.Elapsed == 0 {
		ev.Elapsed = s.state.Elapsed
	}
	for _, sub := range append([]subscription(nil), s.listeners...) {
		sub.fn(ev, s.state.Clone())
	}
}
