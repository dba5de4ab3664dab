// Package lint runs the Spectral linter against a persisted document and parses its JSON output.
package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/jonathan/postman-lint/internal/schemas"
	"github.com/jonathan/postman-lint/internal/types"
)

const (
	// DefaultTimeout is the maximum time to wait for the linter process
	DefaultTimeout = 5 * time.Minute

	// outputFormat asks Spectral for machine-readable results on stdout
	outputFormat = "json"
)

// Runner invokes an external linter. Command holds the program and any leading
// arguments, e.g. ["npx", "@stoplight/spectral-cli"].
type Runner struct {
	Command []string
	Timeout time.Duration
	Echo    io.Writer
}

// Result is the outcome of one linter invocation.
type Result struct {
	Violations []types.Violation
	Raw        json.RawMessage
	Stderr     string
	ExitCode   int
	Duration   time.Duration
}

// NewRunner splits a command line using shell quoting rules.
func NewRunner(commandLine string, timeout time.Duration, echo io.Writer) (*Runner, error) {
	command, err := shlex.Split(commandLine)
	if err != nil {
		return nil, &ExecutionError{
			Message: fmt.Sprintf("cannot parse linter command %q", commandLine),
			Cause:   err,
		}
	}
	if len(command) == 0 {
		return nil, &ExecutionError{Message: "linter command is empty"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if echo == nil {
		echo = os.Stderr
	}
	return &Runner{Command: command, Timeout: timeout, Echo: echo}, nil
}

// Args returns the full argument vector for linting target with ruleset.
func (r *Runner) Args(target, ruleset string) []string {
	args := make([]string, 0, len(r.Command)+6)
	args = append(args, r.Command...)
	return append(args, "lint", target, "--ruleset", ruleset, "-f", outputFormat)
}

// Run lints target against ruleset. A non-zero exit status is expected when the
// linter reports findings; it is only an error when nothing was written to stdout.
func (r *Runner) Run(ctx context.Context, target, ruleset string) (*Result, error) {
	if len(r.Command) == 0 {
		return nil, &ExecutionError{Message: "linter command is empty"}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := r.Args(target, ruleset)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	// Capture both stdout and stderr
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, &ExecutionError{
			Command: strings.Join(args, " "),
			Message: fmt.Sprintf("linter did not finish within %s", timeout),
			Stderr:  stderr.String(),
			Cause:   ctx.Err(),
		}
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, &ExecutionError{
				Command: strings.Join(args, " "),
				Message: "failed to start linter",
				Cause:   runErr,
			}
		}
		exitCode = exitErr.ExitCode()
		if len(bytes.TrimSpace(stdout.Bytes())) == 0 {
			return nil, &ExecutionError{
				Command: strings.Join(args, " "),
				Message: fmt.Sprintf("linter exited with status %d and produced no output", exitCode),
				Stderr:  stderr.String(),
				Cause:   runErr,
			}
		}
	}

	raw := stdout.Bytes()
	violations, err := ParseOutput(raw)
	if err != nil {
		r.echo(raw)
		return nil, err
	}

	return &Result{
		Violations: violations,
		Raw:        json.RawMessage(bytes.TrimSpace(raw)),
		Stderr:     stderr.String(),
		ExitCode:   exitCode,
		Duration:   elapsed,
	}, nil
}

// ParseOutput decodes the linter's JSON array after checking it against the
// lint results schema.
func ParseOutput(raw []byte) ([]types.Violation, error) {
	trimmed := bytes.TrimSpace(raw)
	if !json.Valid(trimmed) {
		return nil, &OutputError{
			Raw:     string(raw),
			Message: "failed to decode JSON from linter output",
		}
	}

	if err := schemas.ValidateLintResults(trimmed); err != nil {
		return nil, &OutputError{
			Raw:     string(raw),
			Message: "linter output does not match the expected results format",
			Cause:   err,
		}
	}

	var violations []types.Violation
	if err := json.Unmarshal(trimmed, &violations); err != nil {
		return nil, &OutputError{
			Raw:     string(raw),
			Message: "failed to decode linter results",
			Cause:   err,
		}
	}
	if violations == nil {
		violations = []types.Violation{}
	}
	return violations, nil
}

//nolint:errcheck // best-effort debugging aid
func (r *Runner) echo(raw []byte) {
	out := r.Echo
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, "Raw linter output:")
	out.Write(raw)
	if len(raw) > 0 && raw[len(raw)-1] != '\n' {
		fmt.Fprintln(out)
	}
}
