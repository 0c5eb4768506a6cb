// Package orchestrator runs a research query end to end: the assistant
// answers it, then the critic scores the answer.
package orchestrator

import (
	"context"
	"fmt"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/google/uuid"
)

// DefaultQuery is used when a run is started without one.
const DefaultQuery = "Find papers about fruit published after 2021 and has 1 citations"

var _ input.ResearchRunner = (*UseCase)(nil)

type UseCase struct {
	assistant input.TaskExecutor
	evaluator input.Evaluator
	logger    output.LoggerPort
}

func New(assistant input.TaskExecutor, evaluator input.Evaluator, logger output.LoggerPort) *UseCase {
	return &UseCase{
		assistant: assistant,
		evaluator: evaluator,
		logger:    logger,
	}
}

func (uc *UseCase) Run(ctx context.Context, query string) (*entity.Report, error) {
	if query == "" {
		query = DefaultQuery
	}

	runID := uuid.NewString()
	log := uc.logger.WithField("run_id", runID)
	log.Info("Research run started", "query", query)

	result, err := uc.assistant.Execute(ctx, query)
	if err != nil {
		log.Error("Research assistant failed", "error", err)
		return nil, fmt.Errorf("research assistant: %w", err)
	}

	score := uc.evaluator.Evaluate(ctx, entity.EvaluationRequest{
		Query:         query,
		AgentResponse: result.FinalAnswer,
	})

	log.Info("Research run completed",
		"iterations", result.Iterations,
		"final", result.Final,
		"evaluationFailed", score.IsError(),
	)

	return &entity.Report{
		RunID:      runID,
		Query:      query,
		Response:   result.FinalAnswer,
		Iterations: result.Iterations,
		Evaluation: score,
	}, nil
}
