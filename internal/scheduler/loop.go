package scheduler

import (
	"context"
	"sync"
	"time"
)

// Loop is a single-goroutine, real-time driver for a [Scheduler].
//
// Every scheduled action and every closure given to [Loop.Post] runs on the goroutine that called
// [Loop.Run], so state touched only from those callbacks needs no locking.
type Loop struct {
	clock Clock
	sched *Scheduler
	inbox chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a Loop driving sched with clock.
func NewLoop(clock Clock, sched *Scheduler) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	return &Loop{
		clock: clock,
		sched: sched,
		inbox: make(chan func(), 16),
		done:  make(chan struct{}),
	}
}

// Post hands fn to the loop goroutine. It reports false, without running fn, once the loop has stopped.
// Safe for concurrent use.
func (l *Loop) Post(fn func()) bool {
	if l.stopped() {
		return false
	}
	select {
	case l.inbox <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop ends [Loop.Run]. Idempotent and safe for concurrent use.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Done is closed once the loop has been stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run sweeps due actions and executes posted closures until ctx is done or [Loop.Stop] is called.
// It returns ctx.Err() when the context ended the loop and nil otherwise.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if l.stopped() {
			return nil
		}
		l.sched.RunDue(l.clock.Now())
		if l.stopped() {
			return nil
		}

		var wake <-chan time.Time
		if next, ok := l.sched.Next(); ok {
			timer.Reset(max(next.Sub(l.clock.Now()), 0))
			wake = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.inbox:
			fn()
		case <-wake:
		}
		timer.Stop()
	}
}

func (l *Loop) stopped() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
