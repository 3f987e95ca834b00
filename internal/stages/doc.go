// Package stages holds the fixed five-stage search narrative and the timing calculator that turns its
// nominal durations into a per-run [models.Schedule].
//
// # Catalog
//
// [Catalog] returns a fresh copy of the stage list on every call, so callers can never mutate the shared
// definition. [Validate] checks the structural invariants: exactly [models.StageCount] stages with
// contiguous ids starting at 1, one to three sub-steps each, and a positive nominal duration.
//
// # Timing
//
// [ComputeSchedule] is pure. Without a measured backend response time, or with acceleration disabled,
// the schedule is the nominal one. When the backend answered in less than [AccelerationThreshold],
// every stage is compressed by [SpeedFactor] and the total is held at or above [MinimumTotal].
// Compression never drops a stage and preserves the relative ordering of stage durations.
//
// [ScaleTo] applies a caller supplied total duration override before acceleration is considered.
package stages
