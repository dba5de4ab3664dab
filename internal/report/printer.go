package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/jonathan/postman-lint/internal/types"
)

// Summary counts what a report contains.
type Summary struct {
	Total      int
	Groups     int
	Unresolved int
	BySeverity map[int]int
}

func summarize(groups []Group) Summary {
	s := Summary{Groups: len(groups), BySeverity: make(map[int]int)}
	for _, g := range groups {
		for _, e := range g.Entries {
			s.Total++
			s.BySeverity[e.Violation.Severity]++
			if e.Err != nil {
				s.Unresolved++
			}
		}
	}
	return s
}

// Printer writes reports as plain text, optionally styled for a terminal.
type Printer struct {
	out    io.Writer
	styled bool
	header lipgloss.Style
	name   lipgloss.Style
	path   lipgloss.Style
	err    lipgloss.Style
	muted  lipgloss.Style
}

// NewPrinter creates a Printer. Styling is applied only when styled is true and
// the writer supports color.
func NewPrinter(out io.Writer, styled bool) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		styled: styled,
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#F4D03F")),
		name:   r.NewStyle().Foreground(lipgloss.Color("#2CD7C7")),
		path:   r.NewStyle().Foreground(lipgloss.Color("#20B9B4")),
		err:    r.NewStyle().Foreground(lipgloss.Color("#E74C3C")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#2C4A54")),
	}
}

func (p *Printer) render(style lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return style.Render(text)
}

// Print writes every group followed by a summary line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) Print(r *Report) {
	for _, g := range r.Groups {
		fmt.Fprintf(p.out, "\n%s\n\n", p.render(p.header,
			fmt.Sprintf("%d occurrences of: %s", len(g.Entries), g.Message)))
		for _, e := range g.Entries {
			p.printEntry(e)
		}
	}
	fmt.Fprintf(p.out, "\n%s\n", p.render(p.muted, FormatSummary(r.Summary)))
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printEntry(e Entry) {
	if e.Label.Name != "" {
		fmt.Fprintln(p.out, p.render(p.name, e.Label.String()))
	} else {
		fmt.Fprintln(p.out, p.render(p.path, e.Label.String()))
	}
	if e.Err != nil {
		fmt.Fprintln(p.out, p.render(p.err, fmt.Sprintf("Error accessing path: %v", e.Err)))
	}
}

// FormatSummary renders a one-line overview such as
// "3 violations across 2 rule messages (1 error, 2 warn)".
func FormatSummary(s Summary) string {
	if s.Total == 0 {
		return "No violations found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s across %s", english.Plural(s.Total, "violation", ""), english.Plural(s.Groups, "rule message", "")))

	severities := make([]int, 0, len(s.BySeverity))
	for sev := range s.BySeverity {
		severities = append(severities, sev)
	}
	sort.Ints(severities)

	parts := make([]string, 0, len(severities))
	for _, sev := range severities {
		parts = append(parts, fmt.Sprintf("%s %s", humanize.Comma(int64(s.BySeverity[sev])), types.SeverityName(sev)))
	}
	sb.WriteString(" (" + strings.Join(parts, ", ") + ")")

	if s.Unresolved > 0 {
		sb.WriteString(fmt.Sprintf("; %s could not be resolved", english.Plural(s.Unresolved, "path", "")))
	}
	return sb.String()
}
