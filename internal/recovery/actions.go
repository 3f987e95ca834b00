package recovery

// EffectKind is what selecting a recovery action does.
type EffectKind int

const (
	// EffectRetry starts a fresh run.
	EffectRetry EffectKind = iota
	// EffectAbandon cancels the errored run.
	EffectAbandon
	// EffectNavigate leaves the animation for another screen.
	EffectNavigate
)

// Navigation targets.
const (
	TargetEditQuery = "edit-query"
	TargetNewSearch = "new-search"
	TargetUpgrade   = "upgrade"
	TargetReport    = "report"
)

// Effect is the resolved meaning of an action id.
type Effect struct {
	Kind   EffectKind
	Target string // set for EffectNavigate
}

var effects = map[string]Effect{
	ActionRetry:         {Kind: EffectRetry},
	ActionTryAgain:      {Kind: EffectRetry},
	ActionGoBack:        {Kind: EffectAbandon},
	ActionTryLater:      {Kind: EffectAbandon},
	ActionUseFilters:    {Kind: EffectNavigate, Target: TargetEditQuery},
	ActionRephrase:      {Kind: EffectNavigate, Target: TargetEditQuery},
	ActionSimplify:      {Kind: EffectNavigate, Target: TargetEditQuery},
	ActionRemoveFilters: {Kind: EffectNavigate, Target: TargetEditQuery},
	ActionStartOver:     {Kind: EffectNavigate, Target: TargetNewSearch},
	ActionUpgrade:       {Kind: EffectNavigate, Target: TargetUpgrade},
	ActionReport:        {Kind: EffectNavigate, Target: TargetReport},
}

// Resolve returns the effect of the action with the given id.
func Resolve(actionID string) (Effect, bool) {
	e, ok := effects[actionID]
	return e, ok
}
