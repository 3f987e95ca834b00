package animation

import (
	"testing"

	"github.com/desertthunder/searchviz/internal/models"
)

func TestStore(t *testing.T) {
	t.Run("snapshots are isolated", func(t *testing.T) {
		s := newStore()
		s.update(Event{Kind: EventStarted}, func(st *State) {
			st.StageStatuses = []models.StageStatus{models.StageActive}
			st.DynamicValues = map[models.SubStepKey]string{{Stage: 1}: "3"}
		})

		snap := s.Snapshot()
		snap.StageStatuses[0] = models.StageError
		snap.DynamicValues[models.SubStepKey{Stage: 1}] = "9"

		again := s.Snapshot()
		if again.StageStatuses[0] != models.StageActive || again.DynamicValues[models.SubStepKey{Stage: 1}] != "3" {
			t.Errorf("snapshot mutation leaked into the store: %+v", again)
		}
	})

	t.Run("subscribe and unsubscribe", func(t *testing.T) {
		s := newStore()
		var a, b []EventKind
		stopA := s.Subscribe(func(ev Event, _ State) { a = append(a, ev.Kind) })
		s.Subscribe(func(ev Event, _ State) { b = append(b, ev.Kind) })

		s.update(Event{Kind: EventStarted}, func(*State) {})
		stopA()
		stopA()
		s.update(Event{Kind: EventReset}, func(*State) {})

		if len(a) != 1 || a[0] != EventStarted {
			t.Errorf("first listener saw %v", a)
		}
		if len(b) != 2 || b[1] != EventReset {
			t.Errorf("second listener saw %v", b)
		}
	})

	t.Run("event carries run id", func(t *testing.T) {
		s := newStore()
		var got string
		s.Subscribe(func(ev Event, _ State) { got = ev.RunID })
		s.update(Event{Kind: EventStarted}, func(st *State) { st.RunID = "run-1" })
		if got != "run-1" {
			t.Errorf("RunID = %q", got)
		}
	})
}

func TestOutcomeAdapters(t *testing.T) {
	t.Run("callbacks", func(t *testing.T) {
		var got []OutcomeKind
		cb := Callbacks{
			OnComplete: func(o Outcome) { got = append(got, o.Kind) },
			OnError:    func(o Outcome) { got = append(got, o.Kind) },
		}
		cb.Notify(Outcome{Kind: OutcomeComplete})
		cb.Notify(Outcome{Kind: OutcomeCancelled})
		cb.Notify(Outcome{Kind: OutcomeFailed})

		if len(got) != 2 || got[1] != OutcomeFailed {
			t.Errorf("dispatched %v", got)
		}
		if cb.Cancellable() {
			t.Error("Cancellable() = true without OnCancel")
		}
	})

	t.Run("controller consults the gate", func(t *testing.T) {
		c, err := NewController(Options{Notifier: Callbacks{OnComplete: func(Outcome) {}}})
		if err != nil {
			t.Fatal(err)
		}
		if c.Cancellable() {
			t.Error("Cancellable() = true")
		}
		c.SetNotifier(NotifierFunc(func(Outcome) {}))
		if !c.Cancellable() {
			t.Error("Cancellable() = false for a plain notifier")
		}
	})

	t.Run("channel never blocks", func(t *testing.T) {
		ch := make(chan Outcome, 1)
		n := ChanNotifier(ch)
		n.Notify(Outcome{Kind: OutcomeComplete})
		n.Notify(Outcome{Kind: OutcomeCancelled})
		if o := <-ch; o.Kind != OutcomeComplete {
			t.Errorf("received %v", o.Kind)
		}
	})

	t.Run("run outcome mapping", func(t *testing.T) {
		if OutcomeFailed.RunOutcome() != models.RunFailed || OutcomeCancelled.RunOutcome() != models.RunCancelled {
			t.Error("unexpected run outcome mapping")
		}
	})
}
