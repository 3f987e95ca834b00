package stages

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
)

// Placeholder is replaced by a sub-step's dynamic value when rendered.
const Placeholder = "{n}"

// SearchingStage is the id of the stage that waits on the backend.
const SearchingStage = 2

var catalog = []models.Stage{
	{
		ID:    1,
		Title: "Understanding your query",
		Icon:  "🧠",
		SubSteps: []models.SubStep{
			{Text: "Parsing search intent"},
			{Text: "Extracting key terms"},
			{Text: "Detecting filters"},
		},
		NominalDuration: 1200 * time.Millisecond,
	},
	{
		ID:    SearchingStage,
		Title: "Searching",
		Icon:  "🔍",
		SubSteps: []models.SubStep{
			{Text: "Querying the index"},
			{Text: "Scanning {n} candidates", HasDynamicValue: true},
		},
		NominalDuration: 2000 * time.Millisecond,
	},
	{
		ID:    3,
		Title: "Analyzing results",
		Icon:  "📊",
		SubSteps: []models.SubStep{
			{Text: "Scoring relevance"},
			{Text: "Cross-checking {n} signals", HasDynamicValue: true},
		},
		NominalDuration: 1500 * time.Millisecond,
	},
	{
		ID:    4,
		Title: "Ranking",
		Icon:  "🏆",
		SubSteps: []models.SubStep{
			{Text: "Ordering by relevance"},
			{Text: "Applying your filters"},
		},
		NominalDuration: 1000 * time.Millisecond,
	},
	{
		ID:    5,
		Title: "Preparing results",
		Icon:  "✨",
		SubSteps: []models.SubStep{
			{Text: "Formatting results"},
			{Text: "Found {n} matches", HasDynamicValue: true},
		},
		NominalDuration: 800 * time.Millisecond,
	},
}

// Catalog returns a copy of the five ordered stages.
func Catalog() []models.Stage {
	out := make([]models.Stage, len(catalog))
	for i, st := range catalog {
		st.SubSteps = append([]models.SubStep(nil), st.SubSteps...)
		out[i] = st
	}
	return out
}

// Validate checks that stages form a well-formed narrative.
func Validate(stages []models.Stage) error {
	if len(stages) != models.StageCount {
		return fmt.Errorf("expected %d stages, got %d", models.StageCount, len(stages))
	}
	for i, st := range stages {
		if st.ID != i+1 {
			return fmt.Errorf("stage at position %d has id %d, want %d", i, st.ID, i+1)
		}
		if n := len(st.SubSteps); n < 1 || n > 3 {
			return fmt.Errorf("stage %d has %d sub-steps, want 1 to 3", st.ID, n)
		}
		if st.NominalDuration <= 0 {
			return fmt.Errorf("stage %d has non-positive duration %v", st.ID, st.NominalDuration)
		}
		for j, sub := range st.SubSteps {
			if strings.Contains(sub.Text, Placeholder) != sub.HasDynamicValue {
				return fmt.Errorf("sub-step %d.%d placeholder does not match its dynamic flag", st.ID, j)
			}
		}
	}
	return nil
}

// Find returns the stage with the given id.
func Find(stages []models.Stage, id int) (models.Stage, bool) {
	for _, st := range stages {
		if st.ID == id {
			return st, true
		}
	}
	return models.Stage{}, false
}

// NominalTotal sums the nominal stage durations.
func NominalTotal(stages []models.Stage) time.Duration {
	var total time.Duration
	for _, st := range stages {
		total += st.NominalDuration
	}
	return total
}

// Render substitutes value into a dynamic sub-step. Missing values render as an ellipsis.
func Render(sub models.SubStep, value string) string {
	if !sub.HasDynamicValue {
		return sub.Text
	}
	if value == "" {
		value = "…"
	}
	return strings.Replace(sub.Text, Placeholder, value, 1)
}
