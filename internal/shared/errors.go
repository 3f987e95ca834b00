package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Search backend errors, one per displayable failure kind
	ErrConnection  = fmt.Errorf("connection failed")
	ErrQueryParse  = fmt.Errorf("query could not be parsed")
	ErrTimeout     = fmt.Errorf("operation timed out")
	ErrServer      = fmt.Errorf("search server error")
	ErrRateLimited = fmt.Errorf("rate limit exceeded")
	ErrNoResults   = fmt.Errorf("no results")

	// Run history errors
	ErrRunNotFound = fmt.Errorf("run not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
