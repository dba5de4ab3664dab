// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/postman-lint/internal/types"
)

// Defaults applied when neither a flag, the config file nor the environment sets a value.
const (
	DefaultAPIURL            = "https://api.postman.com"
	DefaultLinterCommand     = "spectral"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultLintTimeout       = 5 * time.Minute
	DefaultCollectionRuleset = "./rulesets/collection-rules.yaml"
	DefaultWorkspaceRuleset  = "./rulesets/rules.yaml"
	sourceFilePrefix         = "_"
	sourceFileExtension      = ".json"
)

// Duration is a time.Duration that reads as a Go duration string ("30s") in JSON.
type Duration time.Duration

// UnmarshalJSON parses strings like "90s" or "2m".
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON writes the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input selection
	Collection string `json:"collection,omitempty"` // Postman collection UID
	Workspace  string `json:"workspace,omitempty"`  // Postman workspace ID
	Path       string `json:"path,omitempty"`       // Local collection JSON file

	// Files
	Ruleset string `json:"ruleset,omitempty"` // Spectral ruleset file
	Output  string `json:"output,omitempty"`  // Raw results file

	// Behavior
	APIKey      string   `json:"api_key,omitempty"`      // Postman API key
	APIURL      string   `json:"api_url,omitempty"`      // Postman API base URL
	Spectral    string   `json:"spectral,omitempty"`     // Linter command line
	HTTPTimeout Duration `json:"http_timeout,omitempty"` // Postman API request timeout
	LintTimeout Duration `json:"lint_timeout,omitempty"` // Linter process timeout
	NoColor     bool     `json:"no_color,omitempty"`     // Disable styled output
	Verbose     bool     `json:"verbose,omitempty"`      // Debug logging
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate enforces the input-mode rules: exactly one of collection, workspace
// or local path, where a local path implies collection mode.
func (c *Config) Validate() error {
	if c.Collection != "" && c.Workspace != "" {
		return &UsageError{Message: "you must specify either a collection ID (-c) or a workspace ID (-w), but not both"}
	}
	if c.Collection != "" && c.Path != "" {
		return &UsageError{Message: "you must specify a path to the input file (-p) or a collection ID (-c), not both"}
	}
	if c.Workspace != "" && c.Path != "" {
		return &UsageError{Message: "a local input file (-p) can only be linted as a collection, not with a workspace ID (-w)"}
	}
	if c.Collection == "" && c.Workspace == "" && c.Path == "" {
		return &UsageError{Message: "one of --collection (-c), --workspace (-w) or --path (-p) is required"}
	}
	if c.HTTPTimeout < 0 || c.LintTimeout < 0 {
		return &UsageError{Message: "timeouts must be non-negative"}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Ruleset == "" {
		result.Ruleset = defaults.Ruleset
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.Spectral == "" {
		result.Spectral = defaults.Spectral
	}
	if result.HTTPTimeout == 0 {
		result.HTTPTimeout = defaults.HTTPTimeout
	}
	if result.LintTimeout == 0 {
		result.LintTimeout = defaults.LintTimeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ResourceType returns the resource the config targets. A bare local path is a collection.
func (c *Config) ResourceType() types.ResourceType {
	if c.Workspace != "" {
		return types.ResourceWorkspace
	}
	return types.ResourceCollection
}

// Run is the immutable, fully resolved configuration of one invocation.
type Run struct {
	ResourceType  types.ResourceType `validate:"required,oneof=collection workspace"`
	ID            string             `validate:"required_without=InputPath,excluded_with=InputPath"`
	InputPath     string
	RulesetPath   string `validate:"required"`
	OutputPath    string
	APIKey        string        `validate:"required"`
	APIURL        string        `validate:"required,url"`
	LinterCommand string        `validate:"required"`
	HTTPTimeout   time.Duration `validate:"gt=0"`
	LintTimeout   time.Duration `validate:"gt=0"`
	NoColor       bool
	Verbose       bool
}

// Remote reports whether the document is fetched from the Postman API.
func (r *Run) Remote() bool {
	return r.InputPath == ""
}

// SourceFile is the fixed-name file the document is persisted to for the linter.
func (r *Run) SourceFile() string {
	return SourceFileName(r.ResourceType)
}

// SourceFileName returns "_collection.json" or "_workspace.json".
func SourceFileName(resourceType types.ResourceType) string {
	return sourceFilePrefix + string(resourceType) + sourceFileExtension
}

// DefaultRuleset returns the ruleset used when none is supplied.
func DefaultRuleset(resourceType types.ResourceType) string {
	if resourceType == types.ResourceWorkspace {
		return DefaultWorkspaceRuleset
	}
	return DefaultCollectionRuleset
}

// Resolve validates the input mode, then fills every remaining setting from the
// config, the environment and the built-in defaults, in that order.
func Resolve(cfg Config) (*Run, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		key, err := APIKeyFromEnv()
		if err != nil {
			return nil, err
		}
		apiKey = key
	}

	resourceType := cfg.ResourceType()
	cfg = cfg.MergeWithDefaults(Config{
		Ruleset:     DefaultRuleset(resourceType),
		APIURL:      getEnvString(EnvAPIURL, DefaultAPIURL),
		Spectral:    getEnvString(EnvSpectralCmd, DefaultLinterCommand),
		HTTPTimeout: Duration(getEnvDuration(EnvHTTPTimeout, DefaultHTTPTimeout)),
		LintTimeout: Duration(getEnvDuration(EnvLintTimeout, DefaultLintTimeout)),
	})

	id := cfg.Collection
	if resourceType == types.ResourceWorkspace {
		id = cfg.Workspace
	}

	run := &Run{
		ResourceType:  resourceType,
		ID:            id,
		InputPath:     cfg.Path,
		RulesetPath:   cfg.Ruleset,
		OutputPath:    cfg.Output,
		APIKey:        apiKey,
		APIURL:        cfg.APIURL,
		LinterCommand: cfg.Spectral,
		HTTPTimeout:   time.Duration(cfg.HTTPTimeout),
		LintTimeout:   time.Duration(cfg.LintTimeout),
		NoColor:       cfg.NoColor || NoColorFromEnv(),
		Verbose:       cfg.Verbose,
	}

	if err := run.Validate(); err != nil {
		return nil, err
	}
	return run, nil
}

// Validate validates the resolved Run using the validator.
func (r *Run) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return &ConfigError{Message: "invalid run configuration", Cause: err}
	}
	return nil
}
