package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appbinhub/internal/preflight"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check tools, directories, and catalog health before a run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			out := cmd.OutOrStdout()
			color := isTerminal(out)

			rows := make([][]string, 0, len(results))
			failures := 0
			for _, result := range results {
				mark := "ok"
				if !result.Passed {
					mark = "FAIL"
					failures++
				}
				if color {
					if result.Passed {
						mark = "\x1b[32mok\x1b[0m"
					} else {
						mark = "\x1b[31mFAIL\x1b[0m"
					}
				}
				rows = append(rows, []string{result.Name, mark, result.Detail})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Check", "Result", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))

			if failures > 0 {
				return fmt.Errorf("%d of %d checks failed", failures, len(results))
			}
			fmt.Fprintf(out, "all %d checks passed\n", len(results))
			return nil
		},
	}
}
