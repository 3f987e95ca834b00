package models

// ErrorKind is the closed set of failure classes the animation can display.
type ErrorKind string

const (
	ErrorConnection ErrorKind = "connection"
	ErrorParsing    ErrorKind = "parsing"
	ErrorTimeout    ErrorKind = "timeout"
	ErrorServer     ErrorKind = "server"
	ErrorRateLimit  ErrorKind = "rate_limit"
	ErrorNoResults  ErrorKind = "no_results"
	ErrorUnknown    ErrorKind = "unknown"
)

// ErrorKinds lists every [ErrorKind] in display order.
var ErrorKinds = []ErrorKind{
	ErrorConnection,
	ErrorParsing,
	ErrorTimeout,
	ErrorServer,
	ErrorRateLimit,
	ErrorNoResults,
	ErrorUnknown,
}

// ActionVariant is the visual weight of a recovery [Action].
type ActionVariant string

const (
	VariantPrimary   ActionVariant = "primary"
	VariantDanger    ActionVariant = "danger"
	VariantSecondary ActionVariant = "secondary"
)

// Action is a declarative recovery affordance offered alongside an error.
type Action struct {
	ID      string
	Label   string
	Variant ActionVariant
}

// AnimationError is the failure shown in place of the stage narrative.
type AnimationError struct {
	Type        ErrorKind
	Stage       int
	Message     string // technical detail, logged but not rendered
	UserMessage string
	Retryable   bool
	Actions     []Action
}

func (e *AnimationError) Error() string {
	if e.Message != "" {
		return string(e.Type) + ": " + e.Message
	}
	return string(e.Type) + ": " + e.UserMessage
}

// HasAction reports whether an action with the given id is offered.
func (e *AnimationError) HasAction(id string) bool {
	for _, a := range e.Actions {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, or nil for a nil receiver.
func (e *AnimationError) Clone() *AnimationError {
	if e == nil {
		return nil
	}
	c := *e
	c.Actions = append([]Action(nil), e.Actions...)
	return &c
}
