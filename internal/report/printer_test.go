package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/postman-lint/internal/types"
)

func TestPrinter_PlainOutput(t *testing.T) {
	doc := decode(t, loginCollection)
	violations := []types.Violation{
		{Message: "Missing description", Path: types.Path{"item", "0", "request"}, Severity: 0},
		{Message: "Missing description", Path: types.Path{"item", "5", "request"}, Severity: 1},
		{Message: "Use HTTPS", Path: types.Path{"item", "0", "request", "url"}, Severity: 1},
	}

	var buf bytes.Buffer
	NewPrinter(&buf, false).Print(Build(doc, violations))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\n2 occurrences of: Missing description\n\nName: Login\nPath: item.5.request\nError accessing path: "))
	assert.Contains(t, out, "\n1 occurrences of: Use HTTPS\n\nPath: item.0.request.url\n")
	assert.Less(t, strings.Index(out, "Missing description"), strings.Index(out, "Use HTTPS"))
	assert.Contains(t, out, "3 violations across 2 rule messages (1 error, 2 warn); 1 path could not be resolved")
	assert.NotContains(t, out, "\x1b[", "plain output must not contain escape codes")
}

func TestPrinter_NegativeSeverityNeverPrinted(t *testing.T) {
	doc := decode(t, loginCollection)
	violations := []types.Violation{
		{Message: "Suppressed rule", Path: types.Path{"item"}, Severity: -1},
		{Message: "Kept rule", Path: types.Path{"item"}, Severity: 2},
	}

	var buf bytes.Buffer
	NewPrinter(&buf, false).Print(Build(doc, violations))

	assert.NotContains(t, buf.String(), "Suppressed rule")
	assert.Contains(t, buf.String(), "1 occurrences of: Kept rule")
}

func TestPrinter_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Print(Build(decode(t, `{}`), nil))
	assert.Equal(t, "\nNo violations found.\n", buf.String())
}

func TestPrinter_StyledKeepsText(t *testing.T) {
	doc := decode(t, loginCollection)
	var buf bytes.Buffer
	NewPrinter(&buf, true).Print(Build(doc, []types.Violation{
		{Message: "Missing description", Path: types.Path{"item", "0", "request"}},
	}))

	assert.Contains(t, buf.String(), "1 occurrences of: Missing description")
	assert.Contains(t, buf.String(), "Name: Login")
}

func TestFormatSummary(t *testing.T) {
	assert.Equal(t, "No violations found.", FormatSummary(Summary{}))
	assert.Equal(t, "1 violation across 1 rule message (1 hint)",
		FormatSummary(Summary{Total: 1, Groups: 1, BySeverity: map[int]int{3: 1}}))
	assert.Equal(t, "1,200 violations across 4 rule messages (1,000 error, 200 info)",
		FormatSummary(Summary{Total: 1200, Groups: 4, BySeverity: map[int]int{0: 1000, 2: 200}}))
}
