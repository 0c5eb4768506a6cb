// Package evaluator scores research assistant answers with an LLM critic.
package evaluator

import (
	"context"
	"math"
	"strings"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/usecase/critic"

	"github.com/google/uuid"
)

var _ input.Evaluator = (*Evaluator)(nil)

// OutcomeOK is the metrics outcome of a successful evaluation. Failures use
// the error kind.
const OutcomeOK = "ok"

// criticTemperature asks for greedy decoding. The OpenAI-compatible client
// drops a zero temperature from the request, which leaves the provider default.
const criticTemperature = math.SmallestNonzeroFloat32

type Evaluator struct {
	llm          output.LLMPort
	logger       output.LoggerPort
	metrics      output.MetricsPort
	systemPrompt string
}

func New(llm output.LLMPort, logger output.LoggerPort, metrics output.MetricsPort, systemPrompt string) *Evaluator {
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &Evaluator{
		llm:          llm,
		logger:       logger,
		metrics:      metrics,
		systemPrompt: systemPrompt,
	}
}

// Evaluate never fails. Any problem is reported as the all-zero error score
// whose feedback names the failure kind.
func (e *Evaluator) Evaluate(ctx context.Context, req entity.EvaluationRequest) entity.CriticScore {
	score, _ := e.Assess(ctx, req)
	return score
}

// Assess is Evaluate with the failure exposed: a nil error means the score
// passed validation, otherwise the error is a *critic.ValidationError and the
// score is the matching error score.
func (e *Evaluator) Assess(ctx context.Context, req entity.EvaluationRequest) (entity.CriticScore, error) {
	log := e.logger.WithField("evaluation_id", uuid.NewString())
	validator := critic.NewValidator(log)

	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: e.systemPrompt},
		{Role: entity.RoleUser, Content: prompts.CriticUserPrompt(req)},
	}

	resp, err := e.llm.Chat(ctx, output.ChatRequest{
		Messages:    messages,
		Temperature: criticTemperature,
	})
	if err != nil {
		verr := critic.NewError(entity.ErrorKindCompletionFailed, "", "critic request failed: %v", err)
		return e.fail(validator.Reject(verr, req, ""), verr)
	}

	raw := resp.Message.Content
	if strings.TrimSpace(raw) == "" {
		verr := critic.NewError(entity.ErrorKindEmptyResponse, "", "critic returned an empty response")
		return e.fail(validator.Reject(verr, req, raw), verr)
	}

	score, err := validator.Validate(critic.Normalize(raw), req, raw)
	if err != nil {
		return e.fail(score, err)
	}

	e.metrics.ObserveEvaluation(OutcomeOK)
	log.Info("Evaluation completed",
		"completeness", score.Completeness,
		"quality", score.Quality,
		"robustness", score.Robustness,
		"consistency", score.Consistency,
		"specificity", score.Specificity,
	)
	return score, nil
}

func (e *Evaluator) fail(score entity.CriticScore, err error) (entity.CriticScore, error) {
	e.metrics.ObserveEvaluation(critic.KindOf(err).String())
	return score, err
}
