// Package a11y keeps keyboard focus inside a running search animation and announces its progress.
//
// [Trap] is a two-state machine over a [FocusHost]; [Ring] implements the host for any toolkit that can
// report and move focus by element id. [Region] is the live region: polite announcements queue and are
// paced, assertive ones pre-empt them. [Coordinator] ties both to an animation store.
package a11y
