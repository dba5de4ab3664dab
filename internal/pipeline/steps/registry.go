// Package steps provides step definitions and dependency tracking for the lint pipeline.
package steps

import (
	"fmt"
	"sort"
	"sync"
)

// Step names
const (
	StepLoadRuleset     = "load_ruleset"
	StepFetchDocument   = "fetch_document"
	StepPersistDocument = "persist_document"
	StepRunLinter       = "run_linter"
	StepSaveResults     = "save_results"
	StepBuildReport     = "build_report"
)

// Step categories
const (
	CategoryInput  = "input"
	CategoryLint   = "lint"
	CategoryReport = "report"
)

// Step statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusSkipped    = "skipped"
)

// StepDefinition defines metadata for a pipeline step. Optional steps must be
// settled (completed, skipped or failed) before the step starts, but need not
// have completed.
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	Optional     []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepLoadRuleset: {
		Name:         StepLoadRuleset,
		Category:     CategoryInput,
		Dependencies: []string{},
		Optional:     []string{},
	},
	StepFetchDocument: {
		Name:         StepFetchDocument,
		Category:     CategoryInput,
		Dependencies: []string{StepLoadRuleset},
		Optional:     []string{},
	},
	StepPersistDocument: {
		Name:         StepPersistDocument,
		Category:     CategoryInput,
		Dependencies: []string{StepFetchDocument},
		Optional:     []string{},
	},
	StepRunLinter: {
		Name:         StepRunLinter,
		Category:     CategoryLint,
		Dependencies: []string{StepLoadRuleset, StepPersistDocument},
		Optional:     []string{},
	},
	StepSaveResults: {
		Name:         StepSaveResults,
		Category:     CategoryLint,
		Dependencies: []string{StepRunLinter},
		Optional:     []string{},
	},
	StepBuildReport: {
		Name:         StepBuildReport,
		Category:     CategoryReport,
		Dependencies: []string{StepRunLinter},
		Optional:     []string{StepSaveResults},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Tracker records step statuses for a single run.
type Tracker struct {
	mu     sync.Mutex
	status map[string]string
}

// NewTracker creates a Tracker with every registered step pending.
func NewTracker() *Tracker {
	status := make(map[string]string, len(StepRegistry))
	for name := range StepRegistry {
		status[name] = StatusPending
	}
	return &Tracker{status: status}
}

// Status returns the current status of a step.
func (t *Tracker) Status(stepName string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status[stepName]
}

// Start marks a step in progress after checking its dependencies.
func (t *Tracker) Start(stepName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.validateDependencies(stepName); err != nil {
		return err
	}
	t.status[stepName] = StatusInProgress
	return nil
}

// Complete marks a step completed.
func (t *Tracker) Complete(stepName string) {
	t.set(stepName, StatusCompleted)
}

// Fail marks a step failed.
func (t *Tracker) Fail(stepName string) {
	t.set(stepName, StatusFailed)
}

// Skip marks an optional step as deliberately not run.
func (t *Tracker) Skip(stepName string) {
	t.set(stepName, StatusSkipped)
}

func (t *Tracker) set(stepName, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status[stepName] = status
}

func (t *Tracker) validateDependencies(stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if t.status[dep] != StatusCompleted {
			missing = append(missing, dep)
		}
	}
	for _, dep := range def.Optional {
		if st := t.status[dep]; st == StatusPending || st == StatusInProgress {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// AvailableSteps returns pending steps whose dependencies are met, sorted by name.
func (t *Tracker) AvailableSteps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var available []string
	for stepName, status := range t.status {
		if status != StatusPending {
			continue
		}
		if t.validateDependencies(stepName) != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}

// BlockedSteps returns pending steps whose dependencies are not met, sorted by name.
func (t *Tracker) BlockedSteps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var blocked []string
	for stepName, status := range t.status {
		if status != StatusPending {
			continue
		}
		if t.validateDependencies(stepName) != nil {
			blocked = append(blocked, stepName)
		}
	}
	sort.Strings(blocked)
	return blocked
}
