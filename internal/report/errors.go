package report

import (
	"fmt"

	"github.com/jonathan/postman-lint/internal/types"
)

// PathResolutionError reports a violation path that does not lead to a node in
// the document. Segment is the index of the segment that could not be followed.
type PathResolutionError struct {
	Path    types.Path
	Segment int
	Message string
	Cause   error
}

func (e *PathResolutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at segment %d of %q: %v", e.Message, e.Segment, e.Path.String(), e.Cause)
	}
	return fmt.Sprintf("%s at segment %d of %q", e.Message, e.Segment, e.Path.String())
}

func (e *PathResolutionError) Unwrap() error {
	return e.Cause
}
