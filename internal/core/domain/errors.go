package domain

import "fmt"

// ValidationError reports a malformed record. It is raised before any network
// attempt and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
