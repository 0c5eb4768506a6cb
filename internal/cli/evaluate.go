package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"research-agent/internal/domain/entity"

	"github.com/spf13/cobra"
)

func newEvaluateCommand(root *rootOptions) *cobra.Command {
	var (
		query        string
		response     string
		responseFile string
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score an agent response with the critic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if query == "" {
				return errors.New("--query is required")
			}
			if responseFile != "" {
				data, err := readInput(cmd.InOrStdin(), responseFile)
				if err != nil {
					return err
				}
				response = string(data)
			}

			c, _, err := root.container("evaluate", true)
			if err != nil {
				return err
			}
			defer c.Close()

			score := c.Evaluator.Evaluate(cmd.Context(), entity.EvaluationRequest{
				Query:         query,
				AgentResponse: response,
			})
			return writeJSON(cmd.OutOrStdout(), score)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Original user query")
	cmd.Flags().StringVarP(&response, "response", "r", "", "Agent response to evaluate")
	cmd.Flags().StringVarP(&responseFile, "response-file", "f", "", "Read the response from a file ('-' for stdin)")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
