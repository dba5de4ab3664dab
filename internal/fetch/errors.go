package fetch

import "fmt"

// UpstreamError reports a failed call to the Postman API. Status is zero when
// no response was received.
type UpstreamError struct {
	URL     string
	Status  int
	Body    string
	Message string
	Cause   error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream error for %s: %s", e.URL, e.Message)
	if e.Body != "" {
		msg += fmt.Sprintf(": %s", e.Body)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// MalformedInputError reports a local input file that is missing or not JSON.
type MalformedInputError struct {
	Path    string
	Message string
	Cause   error
}

func (e *MalformedInputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed input %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed input %s: %s", e.Path, e.Message)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Cause
}
