package models

import (
	"fmt"
	"time"
)

// RunOutcome is the terminal result recorded for a finished run.
type RunOutcome string

const (
	RunCompleted RunOutcome = "completed"
	RunCancelled RunOutcome = "cancelled"
	RunFailed    RunOutcome = "failed"
)

// Run is a finished animation run persisted in the history table.
type Run struct {
	ID           string
	Sequence     int
	Query        string
	SearchType   SearchType
	Outcome      RunOutcome
	ErrorKind    ErrorKind // empty unless Outcome is [RunFailed]
	Elapsed      time.Duration
	ResponseTime time.Duration // backend response time, zero when the search never returned
	Accelerated  bool
	CreatedAt    time.Time
}

// Validate checks the run's required fields.
func (r *Run) Validate() error {
	if r.Query == "" {
		return fmt.Errorf("query is required")
	}
	switch r.Outcome {
	case RunCompleted, RunCancelled:
	case RunFailed:
		if r.ErrorKind == "" {
			return fmt.Errorf("failed run requires an error kind")
		}
	default:
		return fmt.Errorf("invalid outcome %q", r.Outcome)
	}
	if r.Elapsed < 0 || r.ResponseTime < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}
