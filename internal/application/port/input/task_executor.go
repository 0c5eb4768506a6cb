package input

import (
	"context"

	"research-agent/internal/domain/entity"
)

type ExecuteResult struct {
	FinalAnswer string
	Iterations  int
	Final       bool
}

type TaskExecutor interface {
	Execute(ctx context.Context, task string) (*ExecuteResult, error)
}

// Evaluator scores an agent response. Evaluate never fails: problems are
// reported through the all-zero error score.
type Evaluator interface {
	Evaluate(ctx context.Context, req entity.EvaluationRequest) entity.CriticScore
}

type ResearchRunner interface {
	Run(ctx context.Context, query string) (*entity.Report, error)
}
