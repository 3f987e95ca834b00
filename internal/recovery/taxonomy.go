package recovery

import (
	"strings"

	"github.com/desertthunder/searchviz/internal/models"
)

// Action ids offered by the taxonomy.
const (
	ActionRetry         = "retry"
	ActionTryAgain      = "try-again"
	ActionGoBack        = "go-back"
	ActionUseFilters    = "use-filters"
	ActionRephrase      = "rephrase"
	ActionSimplify      = "simplify"
	ActionReport        = "report"
	ActionUpgrade       = "upgrade"
	ActionTryLater      = "try-later"
	ActionRemoveFilters = "remove-filters"
	ActionStartOver     = "start-over"
)

// Policy is the fixed presentation and recovery record of an [models.ErrorKind].
type Policy struct {
	Kind        models.ErrorKind
	Stage       int
	Message     string
	UserMessage string
	Retryable   bool
	Actions     []models.Action
	Upsell      bool // render the paid-tier offer panel
}

var (
	retry         = models.Action{ID: ActionRetry, Label: "Retry", Variant: models.VariantPrimary}
	tryAgain      = models.Action{ID: ActionTryAgain, Label: "Try again", Variant: models.VariantPrimary}
	goBack        = models.Action{ID: ActionGoBack, Label: "Go back", Variant: models.VariantDanger}
	useFilters    = models.Action{ID: ActionUseFilters, Label: "Use filters instead", Variant: models.VariantPrimary}
	rephrase      = models.Action{ID: ActionRephrase, Label: "Rephrase search", Variant: models.VariantSecondary}
	simplify      = models.Action{ID: ActionSimplify, Label: "Simplify search", Variant: models.VariantSecondary}
	report        = models.Action{ID: ActionReport, Label: "Report problem", Variant: models.VariantSecondary}
	upgrade       = models.Action{ID: ActionUpgrade, Label: "Upgrade plan", Variant: models.VariantPrimary}
	tryLater      = models.Action{ID: ActionTryLater, Label: "Try later", Variant: models.VariantSecondary}
	removeFilters = models.Action{ID: ActionRemoveFilters, Label: "Remove filters", Variant: models.VariantPrimary}
	startOver     = models.Action{ID: ActionStartOver, Label: "Start over", Variant: models.VariantSecondary}
)

var policies = map[models.ErrorKind]Policy{
	models.ErrorConnection: {
		Stage:       2,
		Message:     "connection to the search service failed",
		UserMessage: "We couldn't reach the search service. Check your connection and try again.",
		Retryable:   true,
		Actions:     []models.Action{retry, goBack},
	},
	models.ErrorParsing: {
		Stage:       1,
		Message:     "query could not be parsed",
		UserMessage: "We couldn't understand that search. Try filters or different wording.",
		Retryable:   true,
		Actions:     []models.Action{useFilters, rephrase},
	},
	models.ErrorTimeout: {
		Stage:       2,
		Message:     "search timed out",
		UserMessage: "The search took too long to respond.",
		Retryable:   true,
		Actions:     []models.Action{tryAgain, simplify},
	},
	models.ErrorServer: {
		Stage:       2,
		Message:     "search service returned an error",
		UserMessage: "Something went wrong on our end. We're looking into it.",
		Retryable:   true,
		Actions:     []models.Action{tryAgain, report},
	},
	models.ErrorRateLimit: {
		Stage:       2,
		Message:     "search quota exhausted",
		UserMessage: "You've reached your search limit for now.",
		Retryable:   false,
		Actions:     []models.Action{upgrade, tryLater},
		Upsell:      true,
	},
	models.ErrorNoResults: {
		Stage:       5,
		Message:     "search returned no results",
		UserMessage: "No matches found. Try removing some filters.",
		Retryable:   true,
		Actions:     []models.Action{removeFilters, startOver},
	},
	models.ErrorUnknown: {
		Stage:       2,
		Message:     "unexpected error",
		UserMessage: "Something unexpected happened.",
		Retryable:   true,
		Actions:     []models.Action{tryAgain, goBack},
	},
}

// Lookup returns the policy of kind. Unrecognized kinds get the [models.ErrorUnknown] policy.
func Lookup(kind models.ErrorKind) Policy {
	p, ok := policies[kind]
	if !ok {
		kind = models.ErrorUnknown
		p = policies[kind]
	}
	p.Kind = kind
	p.Actions = append([]models.Action(nil), p.Actions...)
	return p
}

// ParseKind coerces s into a known [models.ErrorKind], defaulting to [models.ErrorUnknown].
func ParseKind(s string) models.ErrorKind {
	kind := models.ErrorKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := policies[kind]; ok {
		return kind
	}
	return models.ErrorUnknown
}

// New builds the [models.AnimationError] for kind bound to stage.
//
// A non-positive stage falls back to the kind's own stage. The cause, when present, becomes the
// technical message.
func New(kind models.ErrorKind, stage int, cause error) *models.AnimationError {
	p := Lookup(kind)
	if stage <= 0 {
		stage = p.Stage
	}
	msg := p.Message
	if cause != nil {
		msg = cause.Error()
	}
	return &models.AnimationError{
		Type:        p.Kind,
		Stage:       stage,
		Message:     msg,
		UserMessage: p.UserMessage,
		Retryable:   p.Retryable,
		Actions:     p.Actions,
	}
}

// Upsell reports whether errors of kind render the paid-tier panel.
func Upsell(kind models.ErrorKind) bool {
	return Lookup(kind).Upsell
}
