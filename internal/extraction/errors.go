package extraction

import "fmt"

// Error represents a failed extraction. Retryable marks collaborator-side
// throttling ("retry later"); the pipeline never loops on it, it surfaces
// the failure and moves on.
type Error struct {
	Schema    SchemaRef
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed (%s): %s: %v", e.Schema, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Schema, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// SchemaViolationError reports extraction output that does not conform to
// the target schema, with per-field detail.
type SchemaViolationError struct {
	Schema SchemaRef
	Fields []FieldError
}

// FieldError is a single schema violation at a specific field.
type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("extraction output violates schema %s (%d issues)", e.Schema, len(e.Fields))
}
