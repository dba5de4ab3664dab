// Package observability provides progress output and logging for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/ruleset"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles progress and verbose output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Stage announces the start of a pipeline stage.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Stage(message string) {
	fmt.Fprintln(p.out, message)
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	for _, line := range lines {
		// Truncate long lines
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRun outputs the resolved run configuration. The API key is never shown.
func (p *Printer) PrintRun(run *config.Run) {
	if run == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Resource: %s\n", run.ResourceType))
	if run.Remote() {
		sb.WriteString(fmt.Sprintf("ID:       %s\n", run.ID))
		sb.WriteString(fmt.Sprintf("API:      %s\n", run.APIURL))
	} else {
		sb.WriteString(fmt.Sprintf("Input:    %s\n", run.InputPath))
	}
	sb.WriteString(fmt.Sprintf("Ruleset:  %s\n", run.RulesetPath))
	sb.WriteString(fmt.Sprintf("Linter:   %s\n", run.LinterCommand))
	if run.OutputPath != "" {
		sb.WriteString(fmt.Sprintf("Output:   %s\n", run.OutputPath))
	}

	p.printBox("RUN CONFIGURATION", sb.String())
}

// PrintRuleset outputs the rules defined by a ruleset.
func (p *Printer) PrintRuleset(rs *ruleset.Ruleset) {
	if rs == nil {
		return
	}

	var sb strings.Builder
	if rs.Skipped != "" {
		sb.WriteString(fmt.Sprintf("Not inspected: %s\n", rs.Skipped))
	}
	if rs.Extends != nil {
		sb.WriteString(fmt.Sprintf("Extends: %v\n", rs.Extends))
	}

	names := rs.RuleNames()
	sb.WriteString(fmt.Sprintf("Rules (%d):\n", len(names)))
	count := min(len(names), maxItemsToShow)
	for i := 0; i < count; i++ {
		rule := rs.Rules[names[i]]
		sb.WriteString(fmt.Sprintf("  • %s", names[i]))
		if rule.Severity != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", rule.Severity))
		}
		sb.WriteString("\n")
	}
	if len(names) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-maxItemsToShow))
	}

	p.printBox("RULESET", sb.String())
}
