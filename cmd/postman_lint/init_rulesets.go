package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/postman-lint/internal/ruleset"
)

func newInitRulesetsCmd() *cobra.Command {
	var (
		dir   string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init-rulesets",
		Short: "Write the bundled default rulesets to disk",
		Long: `Writes collection-rules.yaml, rules.yaml and the custom functions they use into --dir.
Existing files are kept unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := ruleset.WriteDefaults(dir, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(written) == 0 {
				_, _ = fmt.Fprintf(out, "Rulesets already present in %s (use --force to overwrite)\n", dir)
				return nil
			}
			for _, path := range written {
				_, _ = fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "rulesets", "Directory to write the rulesets to")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")

	return cmd
}
