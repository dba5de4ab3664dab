package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/postman-lint/internal/config"
	"github.com/jonathan/postman-lint/internal/fetch"
	"github.com/jonathan/postman-lint/internal/lint"
	"github.com/jonathan/postman-lint/internal/report"
)

func newReportCmd() *cobra.Command {
	var (
		sourcePath  string
		resultsPath string
		noColor     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the grouped report for previously saved linter results",
		Long: `Re-annotates raw linter results (as written by --output) against the document they were
produced from, without calling the Postman API or running Spectral.`,
		Example: `  postman_lint report --source _collection.json --results results.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sourcePath == "" || resultsPath == "" {
				return &config.UsageError{Message: "--source and --results are both required"}
			}

			doc, _, err := fetch.LoadFile(sourcePath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(resultsPath)
			if err != nil {
				return fmt.Errorf("failed to read results from %s: %w", resultsPath, err)
			}
			violations, err := lint.ParseOutput(raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			styled := !noColor && !config.NoColorFromEnv() && isTerminal(out)
			report.NewPrinter(out, styled).Print(report.Build(doc, violations))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourcePath, "source", "", "Document the results were produced from (e.g. _collection.json)")
	cmd.Flags().StringVar(&resultsPath, "results", "", "Raw linter results file")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable styled output")

	return cmd
}
