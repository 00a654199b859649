package workspace

import "fmt"

// Error represents a storage failure. Fatal to the candidate whose bundling
// step triggered it.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Cause != nil:
		return fmt.Sprintf("storage error at %s: %s: %v", e.Path, e.Message, e.Cause)
	case e.Path != "":
		return fmt.Sprintf("storage error at %s: %s", e.Path, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("storage error: %s: %v", e.Message, e.Cause)
	default:
		return fmt.Sprintf("storage error: %s", e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}
