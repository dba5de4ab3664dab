// Package report turns linter violations into a grouped, human-readable report,
// naming each violation after the request or folder that contains it.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jonathan/postman-lint/internal/types"
)

// nameField is the key whose value labels a node in the report.
const nameField = "name"

// Label identifies where a violation occurred. Path is always set; Name is set
// when the parent of the offending node carries a name.
type Label struct {
	Name string
	Path string
}

// String renders the label the way the report prints it.
func (l Label) String() string {
	if l.Name != "" {
		return "Name: " + l.Name
	}
	return "Path: " + l.Path
}

// Entry is one violation with its resolved label. Err is a *PathResolutionError
// when the path could not be followed.
type Entry struct {
	Violation types.Violation
	Label     Label
	Err       error
}

// Group collects the entries sharing one message.
type Group struct {
	Message string
	Entries []Entry
}

// Report is the annotated, grouped result of a lint run.
type Report struct {
	Groups  []Group
	Summary Summary
}

// Filter drops violations below the reportable threshold (negative severity).
func Filter(violations []types.Violation) []types.Violation {
	kept := make([]types.Violation, 0, len(violations))
	for _, v := range violations {
		if v.Severity >= 0 {
			kept = append(kept, v)
		}
	}
	return kept
}

// GroupByMessage groups violations by exact message. Groups appear in the order
// their message was first seen; entries keep their relative order.
func GroupByMessage(violations []types.Violation) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, v := range violations {
		i, ok := index[v.Message]
		if !ok {
			i = len(groups)
			index[v.Message] = i
			groups = append(groups, Group{Message: v.Message})
		}
		groups[i].Entries = append(groups[i].Entries, Entry{Violation: v})
	}
	return groups
}

// Build filters, groups and labels violations against the document they were reported for.
func Build(doc any, violations []types.Violation) *Report {
	groups := GroupByMessage(Filter(violations))
	for gi := range groups {
		for ei := range groups[gi].Entries {
			entry := &groups[gi].Entries[ei]
			entry.Label, entry.Err = ResolveLabel(doc, entry.Violation.Path)
		}
	}
	return &Report{Groups: groups, Summary: summarize(groups)}
}

// ResolveLabel walks doc along every segment of path except the last. If the
// node reached is an object with a non-empty name, that name labels the
// violation; otherwise the dotted path does. A failed walk returns the dotted
// path label together with a *PathResolutionError.
func ResolveLabel(doc any, path types.Path) (Label, error) {
	label := Label{Path: path.String()}

	node, err := walk(doc, path)
	if err != nil {
		return label, err
	}

	if obj, ok := node.(map[string]any); ok {
		label.Name = nameOf(obj[nameField])
	}
	return label, nil
}

func walk(doc any, path types.Path) (any, error) {
	node := doc
	for i, segment := range path.Parent() {
		switch current := node.(type) {
		case map[string]any:
			next, ok := current[segment]
			if !ok {
				return nil, &PathResolutionError{
					Path:    path,
					Segment: i,
					Message: fmt.Sprintf("key %q not found", segment),
				}
			}
			node = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, &PathResolutionError{
					Path:    path,
					Segment: i,
					Message: fmt.Sprintf("list index %q is not an integer", segment),
					Cause:   err,
				}
			}
			if idx < 0 || idx >= len(current) {
				return nil, &PathResolutionError{
					Path:    path,
					Segment: i,
					Message: fmt.Sprintf("list index %d out of range (length %d)", idx, len(current)),
				}
			}
			node = current[idx]
		default:
			return nil, &PathResolutionError{
				Path:    path,
				Segment: i,
				Message: fmt.Sprintf("cannot index %s with %q", kindOf(node), segment),
			}
		}
	}
	return node, nil
}

// nameOf returns a usable label for a name value. Numbers, zero included, keep
// their decimal text.
func nameOf(v any) string {
	switch name := v.(type) {
	case string:
		return name
	case json.Number:
		return name.String()
	default:
		return ""
	}
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, int:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
