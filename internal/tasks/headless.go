package tasks

import (
	"context"

	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/scheduler"
	"github.com/desertthunder/searchviz/internal/services"
)

// Report summarizes a headless run.
type Report struct {
	Outcome animation.Outcome
	State   animation.State // state at the moment the outcome was delivered
	Run     *models.Run
	Result  *services.Result
}

type finish struct {
	outcome animation.Outcome
	state   animation.State
}

// RunHeadless searches for q while animating on a real-time [scheduler.Loop].
//
// narrate, when non-nil, observes every state change on the loop goroutine, ending with the unmount
// after the loop has stopped. Cancelling ctx cancels the
// run. A failed run ends the call; there is nobody to pick a recovery action. The returned error is
// only set when the run could not be set up; search failures are reported through the outcome.
func (e *SearchEngine) RunHeadless(ctx context.Context, q services.Query, narrate animation.Listener) (*Report, error) {
	sched := scheduler.New()
	loop := scheduler.NewLoop(e.opts.Clock, sched)
	values := NewResultValues()

	finished := make(chan finish, 3)
	var ctrl *animation.Controller
	notifier := animation.NotifierFunc(func(o animation.Outcome) {
		select {
		case finished <- finish{outcome: o, state: ctrl.Store().Snapshot()}:
		default:
		}
	})

	ctrl, err := e.NewController(sched, notifier, values)
	if err != nil {
		return nil, err
	}
	if narrate != nil {
		ctrl.Store().Subscribe(narrate)
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(context.Background()) }()
	defer func() {
		loop.Stop()
		<-loopErr
		// The loop goroutine has exited, so the controller is ours again.
		ctrl.Unmount()
	}()

	in := e.Inputs(q)
	in.Values = values
	loop.Post(func() { ctrl.Start(in) })

	searchCtx, cancelSearch := context.WithCancel(ctx)
	defer cancelSearch()
	progress := make(chan services.ProgressUpdate, 8)
	done := e.Search(searchCtx, q, progress)

	report := &Report{}
	cancelled := ctx.Done()
	for {
		select {
		case u := <-progress:
			loop.Post(func() { ctrl.SetProgress(u.Percent) })
		case d := <-done:
			done = nil
			report.Result = d.Result
			switch {
			case d.Err == nil:
				loop.Post(func() {
					values.SetResult(d.Result)
					ctrl.Complete()
				})
			case ctx.Err() != nil:
				loop.Post(func() { ctrl.Cancel() })
			default:
				loop.Post(func() { ctrl.Fail(d.Err) })
			}
		case <-cancelled:
			cancelled = nil
			loop.Post(func() { ctrl.Cancel() })
		case f := <-finished:
			cancelSearch()
			if done != nil {
				d := <-done
				report.Result = d.Result
			}
			report.Outcome = f.outcome
			report.State = f.state

			run, err := e.Record(f.outcome, f.state, report.Result)
			if err != nil {
				e.logger.Warn("failed to record run", "error", err)
			}
			report.Run = run
			return report, nil
		}
	}
}
