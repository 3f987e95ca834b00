package animation

import (
	"github.com/desertthunder/searchviz/internal/models"
	"github.com/desertthunder/searchviz/internal/recovery"
)

// Affordances lists what the presentation may show for a state.
type Affordances struct {
	ShowStages      bool
	ShowProgress    bool
	ShowCancel      bool
	EnhancedCancel  bool
	ShowSlowWarning bool
	RotatingMessage string
	ShowError       bool
	Actions         []models.Action
	ShowUpsell      bool
}

// VisibleAffordances derives the affordances of s. When an error is present only the error panel,
// its recovery actions and the optional upsell are visible.
func VisibleAffordances(s State, cancellable bool) Affordances {
	if !s.IsAnimating {
		return Affordances{}
	}
	if s.Error != nil {
		return Affordances{
			ShowError:  true,
			Actions:    append([]models.Action(nil), s.Error.Actions...),
			ShowUpsell: recovery.Upsell(s.Error.Type),
		}
	}

	a := Affordances{
		ShowStages:      true,
		ShowProgress:    true,
		ShowSlowWarning: s.Slow.ShowSlowWarning,
	}
	if s.Slow.Rotating {
		a.RotatingMessage = s.Slow.Message
	}
	if cancellable && s.Slow.ShowCancel {
		a.ShowCancel = true
		a.EnhancedCancel = s.Slow.EnhancedCancel
	}
	return a
}
