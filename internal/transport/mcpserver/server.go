// Package mcpserver publishes the registered tools over the Model Context
// Protocol on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"research-agent/internal/application/port/output"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name    = "research-agent"
	Version = "0.1.0"
)

// New builds an MCP server exposing every tool in the registry with its JSON
// schema.
func New(tools output.ToolRegistry, logger output.LoggerPort) (*server.MCPServer, error) {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Search arXiv for research papers and score research assistant answers with a critic rubric."),
	)

	for _, tool := range tools.All() {
		schema, err := json.Marshal(tool.Parameters())
		if err != nil {
			return nil, fmt.Errorf("marshal schema for %s: %w", tool.Name(), err)
		}
		s.AddTool(
			mcp.NewToolWithRawSchema(tool.Name().String(), tool.Description(), schema),
			handle(tool, logger),
		)
	}
	return s, nil
}

// Serve speaks MCP over the given streams until ctx is cancelled or in is
// closed.
func Serve(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

func handle(tool output.ToolPort, logger output.LoggerPort) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		logger.Info("MCP tool call", "name", tool.Name().String())

		result, err := tool.Execute(ctx, string(args))
		if err != nil {
			logger.Warn("MCP tool call failed", "name", tool.Name().String(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}
