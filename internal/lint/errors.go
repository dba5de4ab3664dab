package lint

import "fmt"

// ExecutionError represents a linter process that could not be run to completion
type ExecutionError struct {
	Command string
	Message string
	Stderr  string
	Cause   error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("lint execution error: %s", e.Message)
	if e.Command != "" {
		msg += fmt.Sprintf(" (command: %s)", e.Command)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// OutputError represents linter output that could not be parsed
type OutputError struct {
	Raw     string
	Message string
	Cause   error
}

func (e *OutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("lint output error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("lint output error: %s", e.Message)
}

func (e *OutputError) Unwrap() error {
	return e.Cause
}
