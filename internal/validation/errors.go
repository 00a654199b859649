package validation

import "fmt"

// Error is a hard schema violation on an extracted record. It is fatal to
// the candidate that produced it.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
