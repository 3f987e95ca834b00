package animation

import (
	"maps"
	"slices"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
)

// State is the shared animation state of one run.
type State struct {
	RunID      string
	Query      string
	SearchType models.SearchType

	IsAnimating      bool
	CurrentStage     int // id of the most recently activated stage, 0 before the first activation
	StageStatuses    []models.StageStatus
	RevealedSubSteps []int // per stage, how many sub-steps are visible
	SubStepTotals    []int
	DynamicValues    map[models.SubStepKey]string

	IsCancelled bool
	IsComplete  bool
	Error       *models.AnimationError

	Schedule models.Schedule
	Slow     SlowSignals
	Elapsed  time.Duration

	ExternalProgress    float64
	HasExternalProgress bool
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.StageStatuses = slices.Clone(s.StageStatuses)
	c.RevealedSubSteps = slices.Clone(s.RevealedSubSteps)
	c.SubStepTotals = slices.Clone(s.SubStepTotals)
	c.DynamicValues = maps.Clone(s.DynamicValues)
	c.Error = s.Error.Clone()
	c.Schedule = s.Schedule.Clone()
	return c
}

// Status returns the status of the stage with the given id.
func (s State) Status(id int) models.StageStatus {
	if id < 1 || id > len(s.StageStatuses) {
		return models.StagePending
	}
	return s.StageStatuses[id-1]
}

// ActiveStage returns the id of the active stage, or 0 when none is active.
func (s State) ActiveStage() int {
	for i, st := range s.StageStatuses {
		if st == models.StageActive {
			return i + 1
		}
	}
	return 0
}

// Revealed returns how many sub-steps of the given stage are visible.
func (s State) Revealed(id int) int {
	if id < 1 || id > len(s.RevealedSubSteps) {
		return 0
	}
	return s.RevealedSubSteps[id-1]
}

// Value returns the dynamic value of a sub-step, if populated.
func (s State) Value(key models.SubStepKey) (string, bool) {
	v, ok := s.DynamicValues[key]
	return v, ok
}

// Terminal reports whether the run has completed, been cancelled or failed.
func (s State) Terminal() bool {
	return s.IsComplete || s.IsCancelled || s.Error != nil
}

// Progress returns the value for a progress indicator in [0, 100].
//
// An externally pushed value takes precedence over the stage based one; it never changes which stage
// text is shown.
func (s State) Progress() float64 {
	if s.HasExternalProgress {
		return s.ExternalProgress
	}
	return s.ComputedProgress()
}

// ComputedProgress derives progress from stage statuses. Each stage carries an equal share; the active
// stage contributes in proportion to its revealed sub-steps.
func (s State) ComputedProgress() float64 {
	if s.IsComplete {
		return 100
	}
	n := len(s.StageStatuses)
	if n == 0 {
		return 0
	}

	share := 100 / float64(n)
	var p float64
	for i, st := range s.StageStatuses {
		switch st {
		case models.StageCompleted:
			p += share
		case models.StageActive:
			total := 1
			if i < len(s.SubStepTotals) {
				total = s.SubStepTotals[i]
			}
			p += share * float64(s.Revealed(i+1)) / float64(total+1)
		}
	}
	return min(p, 100)
}
