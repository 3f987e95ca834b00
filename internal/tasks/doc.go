// Package tasks orchestrates a backend search together with its progress animation.
//
// # Core Operations
//
// [SearchEngine] wires a [services.Searcher] to an [animation.Controller]:
//
//  1. [SearchEngine.Inputs] : Builds the run's animation inputs
//     - Uses the most recent successful run of the same search type as the measured response time
//     - Applies the configured estimate and acceleration switch
//
//  2. [SearchEngine.Search] : Starts the backend call in its own goroutine
//     - Yields exactly one [SearchDone] on the returned channel
//     - Forwards backend progress without blocking
//
//  3. [SearchEngine.Record] : Persists the finished run in the optional [History]
//
//  4. [SearchEngine.RunHeadless] : Runs everything on a [scheduler.Loop] without a terminal UI
//
// # Dynamic Values
//
// [ResultValues] substitutes real counts into the narrative once the backend has answered and falls back to
// estimates before that. It is only touched from the controller's goroutine.
package tasks
