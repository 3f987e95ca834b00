package stages

import (
	"slices"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
)

const (
	// AccelerationThreshold is the response time below which the schedule is compressed.
	AccelerationThreshold = 2000 * time.Millisecond
	// SpeedFactor is how much faster an accelerated schedule plays.
	SpeedFactor = 1.25
	// MinimumTotal is the floor for an accelerated schedule's total duration.
	MinimumTotal = 2500 * time.Millisecond
)

// ComputeSchedule derives the per-stage durations for one run.
//
// A non-positive actualResponse means the backend response time is unknown.
func ComputeSchedule(stages []models.Stage, actualResponse time.Duration, accelerate bool) models.Schedule {
	nominal := make([]time.Duration, len(stages))
	for i, st := range stages {
		nominal[i] = st.NominalDuration
	}

	if !accelerate || actualResponse <= 0 || actualResponse >= AccelerationThreshold {
		return build(stages, nominal, false, 1)
	}

	total := sum(nominal)
	target := time.Duration(float64(total.Milliseconds())/SpeedFactor+0.5) * time.Millisecond
	if target < MinimumTotal {
		target = MinimumTotal
	}
	return build(stages, distribute(nominal, target), true, SpeedFactor)
}

// ScaleTo returns a copy of stages whose nominal durations are proportionally rescaled to sum to total.
//
// A non-positive total returns the stages unchanged.
func ScaleTo(stages []models.Stage, total time.Duration) []models.Stage {
	out := slices.Clone(stages)
	if total <= 0 || len(stages) == 0 {
		return out
	}

	weights := make([]time.Duration, len(stages))
	for i, st := range stages {
		weights[i] = st.NominalDuration
	}
	for i, d := range distribute(weights, total) {
		out[i].NominalDuration = d
	}
	return out
}

func build(stages []models.Stage, durations []time.Duration, accelerated bool, factor float64) models.Schedule {
	s := models.Schedule{
		Stages:      make([]models.StageTiming, len(stages)),
		Accelerated: accelerated,
		SpeedFactor: factor,
	}
	for i, st := range stages {
		s.Stages[i] = models.StageTiming{ID: st.ID, Duration: durations[i]}
		s.Total += durations[i]
	}
	return s
}

func sum(ds []time.Duration) time.Duration {
	var total time.Duration
	for _, d := range ds {
		total += d
	}
	return total
}

// distribute splits total into whole milliseconds proportional to weights using the largest remainder
// method. Every share is at least 1ms and, when total allows it, the shares sum exactly to total.
func distribute(weights []time.Duration, total time.Duration) []time.Duration {
	n := len(weights)
	out := make([]time.Duration, n)
	if n == 0 {
		return out
	}

	var weightSum int64
	for _, w := range weights {
		weightSum += max(w.Milliseconds(), 1)
	}
	totalMS := max(total.Milliseconds(), int64(n))

	type share struct {
		index int
		ms    int64
		rem   int64
	}
	shares := make([]share, n)
	var used int64
	for i, w := range weights {
		exact := max(w.Milliseconds(), 1) * totalMS
		shares[i] = share{index: i, ms: exact / weightSum, rem: exact % weightSum}
		used += shares[i].ms
	}

	byRemainder := slices.Clone(shares)
	slices.SortStableFunc(byRemainder, func(a, b share) int {
		switch {
		case a.rem > b.rem:
			return -1
		case a.rem < b.rem:
			return 1
		default:
			return 0
		}
	})
	for i := int64(0); i < totalMS-used; i++ {
		shares[byRemainder[i].index].ms++
	}

	for i := range shares {
		if shares[i].ms > 0 {
			continue
		}
		shares[i].ms = 1
		largest := 0
		for j := range shares {
			if shares[j].ms > shares[largest].ms {
				largest = j
			}
		}
		if shares[largest].ms > 1 {
			shares[largest].ms--
		}
	}

	for i, s := range shares {
		out[i] = time.Duration(s.ms) * time.Millisecond
	}
	return out
}
