package schemas_test

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/postman-lint/internal/schemas"
	rootschemas "github.com/jonathan/postman-lint/schemas"
)

func TestLintResultsSchema_EmbeddedMatchesFile(t *testing.T) {
	data, err := os.ReadFile(rootschemas.LintResultsFile)
	require.NoError(t, err)
	assert.Equal(t, data, rootschemas.LintResults)
}

func TestLintResultsSchema_ValidJSON(t *testing.T) {
	var v interface{}
	err := json.Unmarshal(rootschemas.LintResults, &v)
	assert.NoError(t, err, "schema file should be valid JSON")
}

func TestLintResultsSchema_AcceptsSpectralOutput(t *testing.T) {
	output := `[
		{
			"code": "request-description",
			"path": ["item", 0, "request"],
			"message": "Request requires a description.",
			"severity": 1,
			"range": {"start": {"line": 3, "character": 4}, "end": {"line": 8, "character": 5}},
			"source": "/work/_collection.json"
		}
	]`
	assert.NoError(t, schemas.ValidateLintResults([]byte(output)))
}

func TestLintResultsSchema_RejectsMissingMessage(t *testing.T) {
	err := schemas.ValidateLintResults([]byte(`[{"path": []}]`))
	require.Error(t, err)

	validationErr, ok := err.(*schemas.ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.NotEmpty(t, validationErr.Errors)
}
