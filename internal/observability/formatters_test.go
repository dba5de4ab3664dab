package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/ruleset"
	"github.com/jonathan/postman-lint/internal/types"
)

func TestStage(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Stage("Linting JSON data...")
	assert.Equal(t, "Linting JSON data...\n", buf.String())
}

func TestPrintRun_Remote(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintRun(&config.Run{
		ResourceType:  types.ResourceCollection,
		ID:            "1234-abcd",
		APIURL:        "https://api.postman.com",
		APIKey:        "PMAK-secret",
		RulesetPath:   "./rulesets/collection-rules.yaml",
		LinterCommand: "spectral",
	})
	output := buf.String()

	assert.Contains(t, output, "RUN CONFIGURATION")
	assert.Contains(t, output, "1234-abcd")
	assert.Contains(t, output, "collection-rules.yaml")
	assert.NotContains(t, output, "PMAK-secret")
}

func TestPrintRun_Local(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRun(&config.Run{
		ResourceType: types.ResourceCollection,
		InputPath:    "export.json",
		OutputPath:   "results.json",
	})

	assert.Contains(t, buf.String(), "export.json")
	assert.Contains(t, buf.String(), "results.json")
	assert.NotContains(t, buf.String(), "API:")
}

func TestPrintRun_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRun(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRuleset_TruncatesLongLists(t *testing.T) {
	rules := make(map[string]ruleset.Rule)
	for i := 0; i < maxItemsToShow+3; i++ {
		rules[fmt.Sprintf("rule-%02d", i)] = ruleset.Rule{Severity: "warn"}
	}

	var buf bytes.Buffer
	NewPrinter(&buf).PrintRuleset(&ruleset.Ruleset{Rules: rules})
	output := buf.String()

	assert.Contains(t, output, "RULESET")
	assert.Contains(t, output, "rule-00 (warn)")
	assert.Contains(t, output, "... and 3 more")
}

func TestPrintRuleset_NotInspected(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRuleset(&ruleset.Ruleset{Path: ".spectral.js", Skipped: "JavaScript ruleset"})

	assert.Contains(t, buf.String(), "Not inspected: JavaScript ruleset")
	assert.Contains(t, buf.String(), "Rules (0):")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("TITLE", strings.Repeat("x", 200))

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)
	logger.Debug("hidden")
	logger.Info("shown", "run_id", "abc")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "run_id=abc")

	buf.Reset()
	NewLogger(&buf, true).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestBytes(t *testing.T) {
	assert.Equal(t, "0 B", Bytes(-1))
	assert.Equal(t, "12 kB", Bytes(12000))
}
