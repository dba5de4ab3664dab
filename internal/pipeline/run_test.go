package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/fetch"
	"github.com/jonathan/postman-lint/internal/lint"
	"github.com/jonathan/postman-lint/internal/observability"
	"github.com/jonathan/postman-lint/internal/pipeline/steps"
	"github.com/jonathan/postman-lint/internal/ruleset"
	"github.com/jonathan/postman-lint/internal/types"
)

const collectionBody = `{"item": [{"name": "Login", "request": {"method": "POST"}}]}`

const lintOutput = `[
{"code": "request-description", "message": "Request requires a description.", "path": ["item", 0, "request"], "severity": 1},
{"code": "request-description", "message": "Request requires a description.", "path": ["item", 5, "request"], "severity": 1},
{"code": "muted", "message": "Suppressed", "path": ["item"], "severity": -1}
]`

const testRuleset = `rules:
  request-description:
    given: "$.item[*].request"
    severity: warn
    then:
      field: description
      function: truthy
`

// setupWorkspace switches into a temp dir holding a ruleset and a fake linter.
func setupWorkspace(t *testing.T, linterBody string) (rulesetPath, linter string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake linter scripts require a POSIX shell")
	}
	dir := t.TempDir()
	t.Chdir(dir)

	rulesetPath = filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesetPath, []byte(testRuleset), 0644))

	linter = filepath.Join(dir, "fake-spectral")
	script := "#!/bin/sh\n" + linterBody + "\n"
	require.NoError(t, os.WriteFile(linter, []byte(script), 0755))
	return rulesetPath, linter
}

func emitOutput(output string) string {
	return "cat <<'JSON'\n" + output + "\nJSON\nexit 1"
}

func newRun(rulesetPath, linter string) *config.Run {
	return &config.Run{
		ResourceType:  types.ResourceCollection,
		ID:            "1234-abcd",
		RulesetPath:   rulesetPath,
		APIKey:        "PMAK-test",
		LinterCommand: linter,
		HTTPTimeout:   5 * time.Second,
		LintTimeout:   10 * time.Second,
	}
}

func TestRunPipeline_RemoteCollection(t *testing.T) {
	rulesetPath, linter := setupWorkspace(t, emitOutput(lintOutput))

	var gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get(fetch.APIKeyHeader)
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(collectionBody))
	}))
	defer srv.Close()

	run := newRun(rulesetPath, linter)
	run.APIURL = srv.URL
	run.OutputPath = "results.json"

	var stdout bytes.Buffer
	var events []ProgressEvent
	result, err := RunPipeline(context.Background(), RunOptions{
		Run:        run,
		Stdout:     &stdout,
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	require.NoError(t, err)

	assert.Equal(t, "PMAK-test", gotKey)
	assert.Equal(t, "/collections/1234-abcd", gotPath)

	out := stdout.String()
	assert.Less(t, strings.Index(out, BannerFetch), strings.Index(out, BannerLint))
	assert.Less(t, strings.Index(out, BannerLint), strings.Index(out, BannerProcess))
	assert.Contains(t, out, "2 occurrences of: Request requires a description.\n\nName: Login\nPath: item.5.request\nError accessing path: ")
	assert.NotContains(t, out, "Suppressed")

	persisted, err := os.ReadFile("_collection.json")
	require.NoError(t, err)
	assert.Contains(t, string(persisted), "\n    \"item\": [")
	assert.Equal(t, len(persisted), result.DocumentBytes)

	saved, err := os.ReadFile("results.json")
	require.NoError(t, err)
	assert.Contains(t, string(saved), "\n    {\n        \"code\": \"request-description\"")
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(saved, &raw))
	assert.Len(t, raw, 3, "raw results keep filtered entries")

	assert.Equal(t, 2, result.Report.Summary.Total)
	assert.Equal(t, 1, result.Report.Summary.Unresolved)
	require.Len(t, events, 6)
	assert.Equal(t, steps.StepLoadRuleset, events[0].Step)
	assert.Equal(t, steps.StepBuildReport, events[5].Step)
	for _, e := range events {
		assert.Equal(t, result.RunID.String(), e.RunID)
	}
}

func TestRunPipeline_LocalFile(t *testing.T) {
	rulesetPath, linter := setupWorkspace(t, `
[ "$1" = "lint" ] || exit 3
[ "$2" = "_collection.json" ] || exit 4
echo '[]'`)

	require.NoError(t, os.WriteFile("export.json", []byte(collectionBody), 0644))

	run := newRun(rulesetPath, linter)
	run.ID = ""
	run.InputPath = "export.json"

	var stdout bytes.Buffer
	result, err := RunPipeline(context.Background(), RunOptions{Run: run, Stdout: &stdout})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Loading JSON data from export.json...")
	assert.NotContains(t, stdout.String(), BannerFetch)
	assert.Contains(t, stdout.String(), "No violations found.")
	assert.FileExists(t, "_collection.json")
	assert.NoFileExists(t, "results.json")
	assert.Empty(t, result.Report.Groups)
}

func TestRunPipeline_MissingRulesetStopsBeforeFetch(t *testing.T) {
	_, linter := setupWorkspace(t, emitOutput("[]"))

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(collectionBody))
	}))
	defer srv.Close()

	run := newRun("missing.yaml", linter)
	run.APIURL = srv.URL

	_, err := RunPipeline(context.Background(), RunOptions{Run: run, Stdout: &bytes.Buffer{}})

	var rsErr *ruleset.Error
	require.True(t, errors.As(err, &rsErr))
	assert.Equal(t, int32(0), hits.Load())
	assert.NoFileExists(t, "_collection.json")
}

func TestRunPipeline_RulesetsLeftToSpectral(t *testing.T) {
	tests := []struct {
		name    string
		ruleset func(dir string) string
		reason  string
	}{
		{
			name: "javascript",
			ruleset: func(dir string) string {
				path := filepath.Join(dir, ".spectral.js")
				require.NoError(t, os.WriteFile(path, []byte("module.exports = { rules: {} };\n"), 0644))
				return path
			},
			reason: "JavaScript ruleset",
		},
		{
			name:    "url",
			ruleset: func(string) string { return "https://example.com/rules.yaml" },
			reason:  "remote ruleset",
		},
		{
			name: "overrides only",
			ruleset: func(dir string) string {
				path := filepath.Join(dir, "overrides.yaml")
				require.NoError(t, os.WriteFile(path, []byte("overrides:\n  - files: [\"*.json\"]\n    rules: {}\n"), 0644))
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, linter := setupWorkspace(t, "echo '[]'")
			require.NoError(t, os.WriteFile("export.json", []byte(collectionBody), 0644))
			dir, err := os.Getwd()
			require.NoError(t, err)

			run := newRun(tt.ruleset(dir), linter)
			run.ID = ""
			run.InputPath = "export.json"

			var stdout, logs bytes.Buffer
			_, err = RunPipeline(context.Background(), RunOptions{
				Run:    run,
				Stdout: &stdout,
				Logger: observability.NewLogger(&logs, true),
			})
			require.NoError(t, err)

			assert.Contains(t, stdout.String(), "No violations found.")
			if tt.reason != "" {
				assert.Contains(t, logs.String(), `msg="ruleset not inspected"`)
				assert.Contains(t, logs.String(), tt.reason)
			} else {
				assert.Contains(t, logs.String(), `msg="ruleset loaded"`)
			}
		})
	}
}

func TestRunPipeline_UpstreamError(t *testing.T) {
	rulesetPath, linter := setupWorkspace(t, emitOutput("[]"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	run := newRun(rulesetPath, linter)
	run.APIURL = srv.URL

	var stdout, logs bytes.Buffer
	_, err := RunPipeline(context.Background(), RunOptions{
		Run:    run,
		Stdout: &stdout,
		Logger: observability.NewLogger(&logs, true),
	})

	var upErr *fetch.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnauthorized, upErr.Status)
	assert.Contains(t, logs.String(), `msg="step failed"`)
	assert.Contains(t, logs.String(), "step=fetch_document")
	assert.Contains(t, logs.String(), "persist_document run_linter")
	assert.NotContains(t, stdout.String(), BannerLint)
	assert.NoFileExists(t, "_collection.json")
}

func TestRunPipeline_UnparsableOutputIsEchoed(t *testing.T) {
	rulesetPath, linter := setupWorkspace(t, "echo 'Spectral crashed'; exit 2")
	require.NoError(t, os.WriteFile("export.json", []byte(collectionBody), 0644))

	run := newRun(rulesetPath, linter)
	run.ID = ""
	run.InputPath = "export.json"

	var stdout, stderr bytes.Buffer
	_, err := RunPipeline(context.Background(), RunOptions{Run: run, Stdout: &stdout, Stderr: &stderr})

	var outErr *lint.OutputError
	require.True(t, errors.As(err, &outErr))
	assert.Contains(t, stderr.String(), "Spectral crashed")
	assert.NotContains(t, stdout.String(), BannerProcess)
}

func TestRunPipeline_NilRun(t *testing.T) {
	_, err := RunPipeline(context.Background(), RunOptions{})
	assert.Error(t, err)
}

func TestSaveResults_InvalidJSON(t *testing.T) {
	_, err := SaveResults(json.RawMessage(`{not json`), filepath.Join(t.TempDir(), "out.json"))
	assert.Error(t, err)
}
