package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/observability"
	"github.com/jonathan/postman-lint/internal/pipeline"
)

// lintFlags holds the root command's flag values
type lintFlags struct {
	configPath  string
	collection  string
	workspace   string
	path        string
	ruleset     string
	output      string
	apiURL      string
	spectral    string
	httpTimeout time.Duration
	lintTimeout time.Duration
	noColor     bool
	verbose     bool
}

func addLintFlags(cmd *cobra.Command) {
	f := &lintFlags{}

	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&f.collection, "collection", "c", "", "Postman collection UID to fetch (mutually exclusive with --workspace and --path)")
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "Postman workspace ID to fetch (mutually exclusive with --collection and --path)")
	cmd.Flags().StringVarP(&f.path, "path", "p", "", "Local collection JSON file (implies collection rules)")
	cmd.Flags().StringVarP(&f.ruleset, "ruleset", "r", "", "Spectral ruleset (default ./rulesets/collection-rules.yaml or ./rulesets/rules.yaml)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the raw linter results to this file")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "Postman API base URL (defaults to POSTMAN_API_URL or "+config.DefaultAPIURL+")")
	cmd.Flags().StringVar(&f.spectral, "spectral", "", "Spectral command line (defaults to SPECTRAL_CMD or \"spectral\")")
	cmd.Flags().DurationVar(&f.httpTimeout, "http-timeout", 0, "Postman API request timeout (default 30s)")
	cmd.Flags().DurationVar(&f.lintTimeout, "lint-timeout", 0, "Spectral run timeout (default 5m)")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "Disable styled output")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return &config.UsageError{Message: fmt.Sprintf("unexpected argument %q", args[0])}
		}
		return runLint(cmd, f)
	}
}

// buildConfig loads the config file, if any, and applies explicitly set flags on top.
func buildConfig(cmd *cobra.Command, f *lintFlags) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("collection") {
		cfg.Collection = f.collection
	}
	if cmd.Flags().Changed("workspace") {
		cfg.Workspace = f.workspace
	}
	if cmd.Flags().Changed("path") {
		cfg.Path = f.path
	}
	if cmd.Flags().Changed("ruleset") {
		cfg.Ruleset = f.ruleset
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = f.output
	}
	if cmd.Flags().Changed("api-url") {
		cfg.APIURL = f.apiURL
	}
	if cmd.Flags().Changed("spectral") {
		cfg.Spectral = f.spectral
	}
	if cmd.Flags().Changed("http-timeout") {
		cfg.HTTPTimeout = config.Duration(f.httpTimeout)
	}
	if cmd.Flags().Changed("lint-timeout") {
		cfg.LintTimeout = config.Duration(f.lintTimeout)
	}
	if cmd.Flags().Changed("no-color") {
		cfg.NoColor = f.noColor
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	return cfg, nil
}

func runLint(cmd *cobra.Command, f *lintFlags) error {
	cfg, err := buildConfig(cmd, f)
	if err != nil {
		return err
	}

	run, err := config.Resolve(cfg)
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	logger := observability.NewLogger(cmd.ErrOrStderr(), run.Verbose)
	if f.configPath != "" {
		logger.Debug("loaded config", "path", f.configPath)
	}

	_, err = pipeline.RunPipeline(cmd.Context(), pipeline.RunOptions{
		Run:    run,
		Stdout: stdout,
		Stderr: cmd.ErrOrStderr(),
		Logger: logger,
		Styled: !run.NoColor && isTerminal(stdout),
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Debug("progress", "step", e.Step, "category", e.Category, "message", e.Message)
		},
	})
	return err
}

// isTerminal reports whether w is a terminal that can render styles.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
