package cli

import (
	"encoding/json"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/domain/entity"

	"github.com/spf13/cobra"
)

func newSearchCommand(root *rootOptions) *cobra.Command {
	var q struct {
		topic        string
		year         int
		comparison   string
		minCitations int
	}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search arXiv directly, without the assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := tool.ParseSearchArgs(searchArgs(q.topic, q.year, q.comparison, q.minCitations))
			if err != nil {
				return err
			}

			c, _, err := root.container("search", false)
			if err != nil {
				return err
			}
			defer c.Close()

			writeJSONText(cmd.OutOrStdout(), c.Search.Run(cmd.Context(), query))
			return nil
		},
	}

	cmd.Flags().StringVarP(&q.topic, "topic", "t", "", "Research topic")
	cmd.Flags().IntVarP(&q.year, "year", "y", 0, "Publication year reference")
	cmd.Flags().StringVar(&q.comparison, "comparison", string(entity.ComparisonAfter), "after, before or in")
	cmd.Flags().IntVar(&q.minCitations, "min-citations", 0, "Accepted for compatibility; not filtered")
	return cmd
}

func searchArgs(topic string, year int, comparison string, minCitations int) string {
	data, _ := json.Marshal(map[string]any{
		"topic":         topic,
		"year":          year,
		"comparison":    comparison,
		"min_citations": minCitations,
	})
	return string(data)
}
