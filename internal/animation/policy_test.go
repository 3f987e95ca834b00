package animation

import (
	"testing"
	"time"

	"github.com/desertthunder/searchviz/internal/models"
)

func TestEvaluateSlow(t *testing.T) {
	tc := []struct {
		name    string
		elapsed time.Duration
		stage   int
		want    SlowSignals
	}{
		{"quiet start", time.Second, 1, SlowSignals{}},
		{"stage two before rotation", 4900 * time.Millisecond, 2, SlowSignals{}},
		{"rotation begins", 5 * time.Second, 2, SlowSignals{Rotating: true, Message: "Still searching…"}},
		{"second message", 7 * time.Second, 2, SlowSignals{Rotating: true, Message: "Checking more sources…"}},
		{"cancel", 8 * time.Second, 3, SlowSignals{ShowCancel: true}},
		{"warning", 10 * time.Second, 4, SlowSignals{ShowCancel: true, ShowSlowWarning: true}},
		{"enhanced", 15 * time.Second, 0, SlowSignals{ShowCancel: true, ShowSlowWarning: true, EnhancedCancel: true}},
		{"wraps around", 13 * time.Second, 2, SlowSignals{Rotating: true, Message: "Still searching…", ShowCancel: true, ShowSlowWarning: true}},
	}

	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			if got := EvaluateSlow(c.elapsed, c.stage); got != c.want {
				t.Errorf("EvaluateSlow(%v, %d) = %+v, want %+v", c.elapsed, c.stage, got, c.want)
			}
		})
	}
}

func TestSlowSignalsLatch(t *testing.T) {
	cur := SlowSignals{Rotating: true, Message: "Almost there…", ShowCancel: true}
	got := cur.Latch(SlowSignals{})
	if got.Rotating || got.Message != "" {
		t.Errorf("rotation latched: %+v", got)
	}
	if !got.ShowCancel {
		t.Error("ShowCancel switched back off")
	}
}

func TestVisibleAffordances(t *testing.T) {
	running := State{IsAnimating: true, Slow: SlowSignals{Rotating: true, Message: "Still searching…", ShowCancel: true, ShowSlowWarning: true, EnhancedCancel: true}}

	t.Run("slow run", func(t *testing.T) {
		a := VisibleAffordances(running, true)
		if !a.ShowStages || !a.ShowProgress || !a.ShowCancel || !a.EnhancedCancel || !a.ShowSlowWarning {
			t.Errorf("affordances = %+v", a)
		}
		if a.RotatingMessage != "Still searching…" {
			t.Errorf("RotatingMessage = %q", a.RotatingMessage)
		}
		if a.ShowError || len(a.Actions) != 0 {
			t.Errorf("error affordances on a healthy run: %+v", a)
		}
	})

	t.Run("not cancellable", func(t *testing.T) {
		a := VisibleAffordances(running, false)
		if a.ShowCancel || a.EnhancedCancel {
			t.Errorf("cancel shown without a cancel handler: %+v", a)
		}
	})

	t.Run("error suppresses everything else", func(t *testing.T) {
		s := running
		s.Error = &models.AnimationError{
			Type:    models.ErrorRateLimit,
			Actions: []models.Action{{ID: "upgrade"}, {ID: "try-later"}},
		}
		a := VisibleAffordances(s, true)
		if !a.ShowError || !a.ShowUpsell {
			t.Errorf("affordances = %+v, want error panel with upsell", a)
		}
		if a.ShowStages || a.ShowProgress || a.ShowCancel || a.ShowSlowWarning || a.RotatingMessage != "" {
			t.Errorf("affordances = %+v, want stages, cancel and slow messaging hidden", a)
		}
		if len(a.Actions) != 2 || a.Actions[0].ID != "upgrade" {
			t.Errorf("Actions = %+v", a.Actions)
		}
	})

	t.Run("no upsell for other errors", func(t *testing.T) {
		s := running
		s.Error = &models.AnimationError{Type: models.ErrorTimeout}
		if VisibleAffordances(s, true).ShowUpsell {
			t.Error("upsell shown for a timeout")
		}
	})

	t.Run("finished run", func(t *testing.T) {
		if a := VisibleAffordances(State{IsComplete: true}, true); a.ShowStages || a.ShowCancel || a.ShowError {
			t.Errorf("affordances = %+v", a)
		}
	})
}
