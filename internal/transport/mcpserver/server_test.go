package mcpserver

import (
	"context"
	"errors"
	"testing"

	"research-agent/internal/application/service"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoTool struct {
	err  error
	args string
}

func (e *echoTool) Name() entity.ToolName { return entity.ToolEvaluateResponse }
func (e *echoTool) Description() string  { return "echo" }
func (e *echoTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
	}
}
func (e *echoTool) Execute(_ context.Context, args string) (string, error) {
	e.args = args
	return `{"ok":true}`, e.err
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = entity.ToolEvaluateResponse.String()
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestHandle_PassesArgumentsAsJSON(t *testing.T) {
	tool := &echoTool{}

	res, err := handle(tool, logger.NewNop())(context.Background(), call(map[string]any{"query": "fruit"}))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"query":"fruit"}`, tool.args)
	assert.Equal(t, `{"ok":true}`, textContent(t, res))
}

func TestHandle_ToolErrorIsResultError(t *testing.T) {
	tool := &echoTool{err: errors.New("invalid arguments")}

	res, err := handle(tool, logger.NewNop())(context.Background(), call(nil))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "invalid arguments", textContent(t, res))
}

func TestNew_RegistersTools(t *testing.T) {
	registry := service.NewToolRegistry()
	registry.Register(&echoTool{})

	s, err := New(registry, logger.NewNop())

	require.NoError(t, err)
	assert.NotNil(t, s)
}
