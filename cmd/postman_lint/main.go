// Package main provides the entry point for the Postman collection linter.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/postman-lint/internal/config"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postman_lint",
		Short: "Lint Postman collections and workspaces with Spectral",
		Long: `postman_lint fetches a Postman collection or workspace from the Postman API (or loads a
collection export from disk), lints it with Spectral against a ruleset, and prints the
violations grouped by rule message with the name of the offending request or folder.

POSTMAN_API_KEY must be set in the environment or in a .env file.`,
		Example: `  postman_lint -c 12345-abcdef
  postman_lint -w 1f0df51a-8658-4ee8-a2a1-d2567dfa09a9 -r ./rulesets/rules.yaml
  postman_lint -p ./export.json -o results.json`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.UsageError{Message: err.Error()}
	})

	addLintFlags(cmd)
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newInitRulesetsCmd())
	return cmd
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			_, _ = fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
