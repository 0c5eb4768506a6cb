package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.ToolPort = (*EvaluateTool)(nil)

type EvaluateTool struct {
	evaluator input.Evaluator
}

func NewEvaluateTool(evaluator input.Evaluator) *EvaluateTool {
	return &EvaluateTool{evaluator: evaluator}
}

func (t *EvaluateTool) Name() entity.ToolName { return entity.ToolEvaluateResponse }
func (t *EvaluateTool) Description() string {
	return "Score a research assistant response with the critic rubric"
}
func (t *EvaluateTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The original user query",
			},
			"agent_response": map[string]interface{}{
				"type":        "string",
				"description": "The response to evaluate",
			},
		},
		"required": []string{"query", "agent_response"},
	}
}

func (t *EvaluateTool) Execute(ctx context.Context, args string) (string, error) {
	var req entity.EvaluationRequest
	if err := json.Unmarshal([]byte(args), &req); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if err := validate.Struct(req); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	score := t.evaluator.Evaluate(ctx, req)
	data, err := json.Marshal(score)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
