package cli

import (
	"os"
	"os/signal"
	"syscall"

	"research-agent/internal/transport/httpapi"
	"research-agent/internal/transport/mcpserver"

	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, cfg, err := root.container("serve", true)
			if err != nil {
				return err
			}
			defer c.Close()

			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := httpapi.New(httpapi.Deps{
				Evaluator: c.Evaluator,
				Runner:    c.Runner,
				Searcher:  c.Search,
				Metrics:   c.Metrics.Handler(),
				Logger:    c.Logger,
				AccessLog: true,
			})
			return srv.ListenAndServe(ctx, cfg.HTTP.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	return cmd
}

func newMCPCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools over MCP on stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := root.container("mcp", true)
			if err != nil {
				return err
			}
			defer c.Close()

			s, err := mcpserver.New(c.MCPTools, c.Logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return mcpserver.Serve(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
