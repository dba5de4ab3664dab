// Package types provides type definitions for structured data used throughout the postman-lint system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Severity levels as reported by Spectral.
const (
	SeverityError = 0
	SeverityWarn  = 1
	SeverityInfo  = 2
	SeverityHint  = 3
)

// SeverityName returns the Spectral name for a severity level.
func SeverityName(severity int) string {
	switch severity {
	case SeverityError:
		return "error"
	case SeverityWarn:
		return "warn"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return fmt.Sprintf("severity(%d)", severity)
	}
}

// Path locates a node inside a JSON document. Integer segments emitted by the
// linter are kept in their decimal string form.
type Path []string

// UnmarshalJSON accepts an array whose elements are strings or integers.
func (p *Path) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("path must be an array: %w", err)
	}

	segments := make(Path, 0, len(raw))
	for i, elem := range raw {
		var s string
		if err := json.Unmarshal(elem, &s); err == nil {
			segments = append(segments, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(elem, &n); err != nil {
			return fmt.Errorf("path segment %d must be a string or integer, got %s", i, string(elem))
		}
		segments = append(segments, n.String())
	}

	*p = segments
	return nil
}

// Parent returns every segment except the last. An empty path has an empty parent.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return Path{}
	}
	return p[:len(p)-1]
}

// String joins the segments with dots, e.g. "item.0.request".
func (p Path) String() string {
	return strings.Join(p, ".")
}

// RuleCode names the rule that produced a violation. Numeric codes are kept
// in their decimal string form.
type RuleCode string

// UnmarshalJSON accepts a string or a number.
func (c *RuleCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = RuleCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("code must be a string or number, got %s", string(data))
	}
	*c = RuleCode(n.String())
	return nil
}

// Position is a zero-based line/character location in the linted file.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans the offending text in the linted file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Violation represents a single linter finding
type Violation struct {
	Code     RuleCode `json:"code,omitempty"`
	Message  string   `json:"message"`
	Path     Path     `json:"path"`
	Severity int      `json:"severity"`
	Source   string   `json:"source,omitempty"`
	Range    *Range   `json:"range,omitempty"`
}

// ResourceType identifies which Postman resource a run targets.
type ResourceType string

// Supported resource types.
const (
	ResourceCollection ResourceType = "collection"
	ResourceWorkspace  ResourceType = "workspace"
)

// Valid reports whether r is a known resource type.
func (r ResourceType) Valid() bool {
	return r == ResourceCollection || r == ResourceWorkspace
}
