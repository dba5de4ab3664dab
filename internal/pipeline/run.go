// Package pipeline provides the high-level orchestration of a lint run.
package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/fetch"
	"github.com/jonathan/postman-lint/internal/lint"
	"github.com/jonathan/postman-lint/internal/observability"
	"github.com/jonathan/postman-lint/internal/pipeline/steps"
	"github.com/jonathan/postman-lint/internal/report"
	"github.com/jonathan/postman-lint/internal/ruleset"
)

// Stage banners printed to stdout
const (
	BannerFetch   = "Fetching JSON data from Postman API..."
	BannerLoad    = "Loading JSON data from %s..."
	BannerLint    = "Linting JSON data..."
	BannerProcess = "Processing linting results..."
)

// resultsIndent matches the indentation used for the persisted document
const resultsIndent = "    "

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Run        *config.Run
	Stdout     io.Writer // banners and the report; defaults to os.Stdout
	Stderr     io.Writer // raw linter output echoed on parse failure; defaults to os.Stderr
	Logger     *slog.Logger
	Styled     bool
	OnProgress ProgressCallback
}

// Result is what a completed run produced.
type Result struct {
	RunID         uuid.UUID
	SourceFile    string
	DocumentBytes int
	Lint          *lint.Result
	Report        *report.Report
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: steps.StepRegistry[step].Category,
			Message:  message,
			RunID:    runID.String(),
			Content:  content,
		})
	}
}

// runStep executes fn as the named step, recording its status in the tracker.
// A failure logs the steps it leaves blocked.
func runStep(tracker *steps.Tracker, logger *slog.Logger, name string, fn func() error) error {
	if err := tracker.Start(name); err != nil {
		return err
	}
	if err := fn(); err != nil {
		tracker.Fail(name)
		logger.Debug("step failed", "step", name, "blocked", tracker.BlockedSteps(), "error", err)
		return err
	}
	tracker.Complete(name)
	logger.Debug("step completed", "step", name, "next", tracker.AvailableSteps())
	return nil
}

// RunPipeline fetches or loads the document, lints it and prints the grouped report.
func RunPipeline(ctx context.Context, opts RunOptions) (*Result, error) {
	run := opts.Run
	if run == nil {
		return nil, fmt.Errorf("run configuration is required")
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}

	runID := uuid.New()
	logger = logger.With("run_id", runID.String())
	printer := observability.NewPrinter(stdout)
	tracker := steps.NewTracker()
	result := &Result{RunID: runID, SourceFile: run.SourceFile()}

	if run.Verbose {
		printer.PrintRun(run)
	}
	logger.Debug("starting run", "resource", run.ResourceType, "remote", run.Remote())

	// Step 1: check the ruleset before spending a network call
	var rs *ruleset.Ruleset
	err := runStep(tracker, logger, steps.StepLoadRuleset, func() error {
		var err error
		rs, err = ruleset.Load(run.RulesetPath)
		return err
	})
	if err != nil {
		return nil, err
	}
	if run.Verbose {
		printer.PrintRuleset(rs)
	}
	if rs.Skipped != "" {
		logger.Debug("ruleset not inspected", "path", rs.Path, "reason", rs.Skipped)
	} else {
		logger.Debug("ruleset loaded", "path", rs.Path, "rules", len(rs.Rules))
	}
	emitProgress(&opts, runID, steps.StepLoadRuleset,
		fmt.Sprintf("Loaded ruleset %s", rs.Path), rs.RuleNames())

	// Step 2: fetch from the Postman API or load the local export
	var doc fetch.Document
	err = runStep(tracker, logger, steps.StepFetchDocument, func() error {
		var size int
		var err error
		if run.Remote() {
			printer.Stage(BannerFetch)
			client := fetch.NewClient(&fetch.Options{
				BaseURL: run.APIURL,
				APIKey:  run.APIKey,
				Timeout: run.HTTPTimeout,
			})
			doc, size, err = client.Fetch(ctx, run.ResourceType, run.ID)
		} else {
			printer.Stage(fmt.Sprintf(BannerLoad, run.InputPath))
			doc, size, err = fetch.LoadFile(run.InputPath)
		}
		if err != nil {
			return err
		}
		logger.Info("document retrieved", "resource", run.ResourceType, "size", observability.Bytes(size))
		return nil
	})
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, runID, steps.StepFetchDocument,
		fmt.Sprintf("Retrieved %s", run.ResourceType), nil)

	// Step 3: persist the document where the linter can read it
	err = runStep(tracker, logger, steps.StepPersistDocument, func() error {
		n, err := fetch.Persist(doc, result.SourceFile)
		if err != nil {
			return err
		}
		result.DocumentBytes = n
		logger.Debug("document persisted", "file", result.SourceFile, "size", observability.Bytes(n))
		return nil
	})
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, runID, steps.StepPersistDocument,
		fmt.Sprintf("Wrote %s", result.SourceFile), nil)

	// Step 4: run the linter
	printer.Stage(BannerLint)
	err = runStep(tracker, logger, steps.StepRunLinter, func() error {
		runner, err := lint.NewRunner(run.LinterCommand, run.LintTimeout, stderr)
		if err != nil {
			return err
		}
		logger.Debug("invoking linter", "args", runner.Args(result.SourceFile, run.RulesetPath))
		result.Lint, err = runner.Run(ctx, result.SourceFile, run.RulesetPath)
		if err != nil {
			return err
		}
		logger.Info("linter finished",
			"violations", len(result.Lint.Violations),
			"exit_code", result.Lint.ExitCode,
			"duration", result.Lint.Duration)
		return nil
	})
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, runID, steps.StepRunLinter,
		fmt.Sprintf("Linter reported %d results", len(result.Lint.Violations)), nil)

	// Step 5: save the raw results if requested
	if run.OutputPath != "" {
		err = runStep(tracker, logger, steps.StepSaveResults, func() error {
			n, err := SaveResults(result.Lint.Raw, run.OutputPath)
			if err != nil {
				return err
			}
			logger.Info("results saved", "file", run.OutputPath, "size", observability.Bytes(n))
			return nil
		})
		if err != nil {
			return nil, err
		}
		emitProgress(&opts, runID, steps.StepSaveResults,
			fmt.Sprintf("Saved results to %s", run.OutputPath), nil)
	} else {
		tracker.Skip(steps.StepSaveResults)
	}

	// Step 6: annotate and print
	printer.Stage(BannerProcess)
	err = runStep(tracker, logger, steps.StepBuildReport, func() error {
		result.Report = report.Build(doc, result.Lint.Violations)
		for _, g := range result.Report.Groups {
			for _, e := range g.Entries {
				if e.Err != nil {
					logger.Debug("path not resolved", "path", e.Violation.Path.String(), "error", e.Err)
				}
			}
		}
		report.NewPrinter(stdout, opts.Styled).Print(result.Report)
		return nil
	})
	if err != nil {
		return nil, err
	}
	emitProgress(&opts, runID, steps.StepBuildReport,
		report.FormatSummary(result.Report.Summary), result.Report.Summary)

	return result, nil
}

// SaveResults writes raw linter output re-indented with four spaces. It
// returns the number of bytes written.
func SaveResults(raw json.RawMessage, path string) (int, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", resultsIndent); err != nil {
		return 0, fmt.Errorf("failed to format results: %w", err)
	}
	buf.WriteByte('\n')
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write results to %s: %w", path, err)
	}
	return buf.Len(), nil
}
