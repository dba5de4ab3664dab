// Package schemas holds the JSON Schemas shipped with the binary.
package schemas

import _ "embed"

// LintResultsFile is the schema file name for linter output.
const LintResultsFile = "lint_results.schema.json"

// LintResults is the JSON Schema for the array printed by `spectral lint -f json`.
//
//go:embed lint_results.schema.json
var LintResults []byte
