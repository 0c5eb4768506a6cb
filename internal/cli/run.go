package cli

import (
	"fmt"
	"strings"

	"research-agent/internal/usecase/orchestrator"

	"github.com/spf13/cobra"
)

func newRunCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [query]",
		Short: "Answer a research query and evaluate the answer",
		Long:  fmt.Sprintf("Runs the research assistant on the query, prints its answer, then prints the critic's evaluation.\nDefault query: %q", orchestrator.DefaultQuery),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				query = orchestrator.DefaultQuery
			}

			c, _, err := root.container(query, true)
			if err != nil {
				return err
			}
			defer c.Close()

			report, err := c.Runner.Run(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("research run failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n=== Results ===")
			writeJSONText(out, report.Response)
			fmt.Fprintln(out, "\n=== Evaluation ===")
			return writeJSON(out, report.Evaluation)
		},
	}
}
