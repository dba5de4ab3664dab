// Package ruleset loads Spectral rulesets ahead of a lint run and ships the
// default rulesets for collections and workspaces.
package ruleset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFunctionsDir is where Spectral looks for custom functions, relative to the ruleset.
const DefaultFunctionsDir = "functions"

// Ruleset is the subset of a Spectral ruleset the CLI inspects before linting.
// Skipped is set when the contents were left for Spectral to interpret.
type Ruleset struct {
	Path         string          `yaml:"-"`
	Skipped      string          `yaml:"-"`
	Extends      any             `yaml:"extends,omitempty"`
	Overrides    any             `yaml:"overrides,omitempty"`
	Formats      []string        `yaml:"formats,omitempty"`
	Functions    []string        `yaml:"functions,omitempty"`
	FunctionsDir string          `yaml:"functionsDir,omitempty"`
	Rules        map[string]Rule `yaml:"rules,omitempty"`
}

// IsRemote reports whether path is a ruleset URL.
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsScript reports whether path is a JavaScript ruleset.
func IsScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return true
	}
	return false
}

// Rule is a single Spectral rule. Rules that only override an inherited rule
// ("off", "warn", false) carry just a Severity.
type Rule struct {
	Description string `yaml:"description,omitempty"`
	Message     string `yaml:"message,omitempty"`
	Severity    string `yaml:"severity,omitempty"`
	Given       any    `yaml:"given,omitempty"`
	Then        any    `yaml:"then,omitempty"`
	Override    bool   `yaml:"-"`
}

// UnmarshalYAML accepts both full rule definitions and scalar overrides.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*r = Rule{Severity: value.Value, Override: true}
		return nil
	}

	type plain Rule
	var decoded plain
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*r = Rule(decoded)
	return nil
}

// Load reads and checks a ruleset file. It fails only when the file is missing
// or references custom functions that do not exist on disk. URL and JavaScript
// rulesets, and files it cannot make sense of, come back with Skipped set.
func Load(path string) (*Ruleset, error) {
	if IsRemote(path) {
		return &Ruleset{Path: path, Skipped: "remote ruleset"}, nil
	}
	if IsScript(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, readError(path, err)
		}
		return &Ruleset{Path: path, Skipped: "JavaScript ruleset"}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}

	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return &Ruleset{Path: path, Skipped: fmt.Sprintf("not YAML: %v", err)}, nil
	}
	rs.Path = path

	if len(rs.Rules) == 0 && rs.Extends == nil && rs.Overrides == nil {
		rs.Skipped = "no local rules, extends or overrides"
	}

	for _, fn := range rs.Functions {
		fnPath := rs.FunctionPath(fn)
		if _, err := os.Stat(fnPath); err != nil {
			return nil, &Error{
				Path:    path,
				Message: fmt.Sprintf("custom function %q not found at %s", fn, fnPath),
				Cause:   err,
			}
		}
	}

	return &rs, nil
}

func readError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return &Error{
			Path:    path,
			Message: "ruleset file not found (run `postman_lint init-rulesets` to create the defaults)",
			Cause:   err,
		}
	}
	return &Error{Path: path, Message: "failed to read ruleset", Cause: err}
}

// FunctionPath returns where Spectral will load the named custom function from.
func (rs *Ruleset) FunctionPath(name string) string {
	dir := rs.FunctionsDir
	if dir == "" {
		dir = DefaultFunctionsDir
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(rs.Path), dir)
	}
	return filepath.Join(dir, name+".js")
}

// RuleNames returns the locally defined rule names in sorted order.
func (rs *Ruleset) RuleNames() []string {
	names := make([]string, 0, len(rs.Rules))
	for name := range rs.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
