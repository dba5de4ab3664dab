package ruleset

import "fmt"

// Error represents a ruleset that cannot be used for linting.
type Error struct {
	Path    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ruleset error for %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("ruleset error for %s: %s", e.Path, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
