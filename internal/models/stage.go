package models

import (
	"fmt"
	"time"
)

// StageCount is the fixed length of the stage narrative.
const StageCount = 5

// SubStep is a textual beat within a [Stage].
//
// When HasDynamicValue is set, Text contains a single "{n}" placeholder that is
// substituted with the run's dynamic value for this sub-step.
type SubStep struct {
	Text            string
	HasDynamicValue bool
}

// Stage is one of the five ordered phases of the search narrative.
type Stage struct {
	ID              int
	Title           string
	Icon            string
	SubSteps        []SubStep
	NominalDuration time.Duration
}

// SubStepKey identifies a sub-step by its stage id and zero-based index.
type SubStepKey struct {
	Stage int
	Index int
}

func (k SubStepKey) String() string {
	return fmt.Sprintf("%d.%d", k.Stage, k.Index)
}

// StageStatus is the per-stage progress marker held by the animation state.
type StageStatus int

const (
	StagePending StageStatus = iota
	StageActive
	StageCompleted
	StageError
)

func (s StageStatus) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageActive:
		return "active"
	case StageCompleted:
		return "completed"
	case StageError:
		return "error"
	default:
		return ""
	}
}

// StageTiming is a single stage's adjusted duration within a [Schedule].
type StageTiming struct {
	ID       int
	Duration time.Duration
}

// Schedule is the derived per-stage timing of one run.
//
// It is computed once when a run starts and never mutated afterwards.
type Schedule struct {
	Stages      []StageTiming
	Total       time.Duration
	Accelerated bool
	SpeedFactor float64
}

// Offset returns the start offset of the stage with the given id, relative to run start.
func (s Schedule) Offset(id int) time.Duration {
	var offset time.Duration
	for _, st := range s.Stages {
		if st.ID == id {
			return offset
		}
		offset += st.Duration
	}
	return offset
}

// Duration returns the adjusted duration of the stage with the given id.
func (s Schedule) Duration(id int) time.Duration {
	for _, st := range s.Stages {
		if st.ID == id {
			return st.Duration
		}
	}
	return 0
}

// Clone returns a copy of the schedule that shares no backing arrays.
func (s Schedule) Clone() Schedule {
	c := s
	c.Stages = append([]StageTiming(nil), s.Stages...)
	return c
}
