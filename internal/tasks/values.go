package tasks

import (
	"github.com/desertthunder/searchviz/internal/animation"
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/services"
)

// ResultValues is an [animation.ValueSource] backed by the search result once known.
type ResultValues struct {
	result   *services.Result
	fallback animation.ValueSource
}

func NewResultValues() *ResultValues {
	return &ResultValues{fallback: animation.EstimatedValues{}}
}

// SetResult makes r's counts available to sub-steps revealed from now on.
func (v *ResultValues) SetResult(r *services.Result) { v.result = r }

func (v *ResultValues) Value(key models.SubStepKey, in animation.Inputs) string {
	if v.result != nil {
		switch key.Stage {
		case 2:
			return animation.FormatCount(v.result.Candidates)
		case 5:
			return animation.FormatCount(len(v.result.Matches))
		}
	}
	return v.fallback.Value(key, in)
}
