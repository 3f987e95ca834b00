// Package animation implements the search progress animation controller.
//
// # Ownership
//
// Each [Controller] owns one [Store] and one [scheduler.Scheduler]. The store is the only copy of the
// animation [State]; readers take [Store.Snapshot] copies or [Store.Subscribe] to receive an [Event]
// with a fresh copy after every mutation. Nothing outside this package can write to it.
//
// # Lifecycle
//
//	Idle ──Start──▶ Running ──Complete / SetProgress(100)──▶ Completed
//	                   │  └──────Fail──────▶ Errored ──Cancel──▶ Cancelled
//	                   └──────Cancel──────▶ Cancelled
//
// While running, stages 1 to 5 activate at the cumulative offsets of the run's [models.Schedule]; each
// activation completes the previous stage and reveals the stage's sub-steps at small fixed intervals.
// Completion fast-forwards any remaining stages so the narrative always ends on a finished stage list.
// Every terminal transition clears the scheduler first, so no timer can touch the state afterwards.
//
// # Outcomes
//
// Terminal results are delivered as a tagged [Outcome] through a [Notifier]. Per run, Complete and
// Cancelled are mutually exclusive and each kind is delivered at most once; a Failed run may later be
// abandoned, which delivers Cancelled.
//
// # Policies
//
// [EvaluateSlow] is the slow response policy, evaluated on a recurring tick from a single elapsed time
// source and latched through [SlowSignals.Latch]. The fast response policy lives in
// [stages.ComputeSchedule]. [VisibleAffordances] turns a state into what the presentation may render.
package animation
