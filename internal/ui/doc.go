// Package ui implements the interactive search progress animation using bubbletea's Elm architecture.
//
// A single [Model] drives one [animation.Controller] per session:
//  1. Running : five stages with revealed sub-steps, a progress bar, rotating slow messages and a
//     cancel button once the search runs long
//  2. Error : the error panel with its recovery actions and, for quota errors, the upsell panel
//  3. Complete / Cancelled : the result summary, with r to search again
//
// The update loop is the controller's only goroutine. Every update re-arms a single tea.Tick for the
// scheduler's next deadline; ticks carry the scheduler generation so those armed for a cleared run are
// dropped. Backend progress and results arrive as [Msg] values tagged with the run id.
//
// Focus and announcements go through [a11y.Coordinator]: tab and shift+tab cycle the visible buttons,
// esc cancels, and the latest live region text is rendered under the animation.
package ui
