package engine

import (
	"errors"
	"fmt"
)

// External collaborator error taxonomy. Collaborator implementations wrap
// these sentinels so the engine can tell failure classes apart without
// knowing transport details.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrTimeout      = errors.New("timed out")
)

// ValidationError reports malformed stage or variable configuration,
// detected at configuration load rather than at runtime dispatch.
type ValidationError struct {
	Subject string // stage or variable identifier
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Subject, e.Reason)
}
