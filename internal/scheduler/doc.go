// Package scheduler owns every deferred action of an animation run.
//
// A [Scheduler] is a deadline-ordered list of actions plus a generation counter. It never starts
// goroutines or timers itself; a driver decides when "now" is and calls [Scheduler.RunDue]:
//   - tests advance a [FakeClock] and sweep, giving fully simulated time
//   - [Loop] is a single-goroutine real-time driver for headless runs
//   - the bubbletea model arms a tick for [Scheduler.Next] and sweeps on delivery
//
// [Scheduler.Clear] is the one cleanup operation: it drops every pending action at once and bumps the
// generation so drivers can recognize wakeups armed for discarded work.
package scheduler
