// Package repositories implements SQLite persistence for run history.
//
// [RunRepository] records every finished animation run with an atomic sequence number for stable, human-readable
// ordering. The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence
// tables.
package repositories
