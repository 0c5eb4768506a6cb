// Package executor drives the research assistant: it alternates model turns
// with tool execution until the assistant produces a final JSON answer or the
// auto-reply budget runs out.
package executor

import (
	"context"
	"fmt"
	"unicode/utf8"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/usecase/critic"
)

var _ input.TaskExecutor = (*UseCase)(nil)

const (
	DefaultMaxAutoReplies = 3
	maxObservationLen     = 20000
)

type Config struct {
	SystemPrompt   string
	MaxAutoReplies int
	Temperature    float32
}

type UseCase struct {
	llm     output.LLMPort
	tools   output.ToolRegistry
	logger  output.LoggerPort
	metrics output.MetricsPort
	cfg     Config
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	logger output.LoggerPort,
	metrics output.MetricsPort,
	cfg Config,
) *UseCase {
	if cfg.MaxAutoReplies <= 0 {
		cfg.MaxAutoReplies = DefaultMaxAutoReplies
	}
	if metrics == nil {
		metrics = output.NopMetrics{}
	}
	return &UseCase{
		llm:     llm,
		tools:   tools,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
	}
}

// Execute runs the conversation for task. Every driver turn (a batch of tool
// results or a nudge) consumes one auto-reply; once the budget is spent the
// last assistant message is returned as is.
func (uc *UseCase) Execute(ctx context.Context, task string) (*input.ExecuteResult, error) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: uc.cfg.SystemPrompt},
		{Role: entity.RoleUser, Content: task},
	}

	toolDefs := uc.tools.Definitions()
	replies := 0

	for iteration := 1; ; iteration++ {
		uc.logger.Debug("Starting iteration", "iteration", iteration, "autoReplies", replies)

		resp, err := uc.llm.Chat(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: uc.cfg.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}

		msg := resp.Message
		messages = append(messages, msg)

		final := !msg.HasToolCalls() && critic.IsFinal(msg.Content)
		if final || replies >= uc.cfg.MaxAutoReplies {
			if !final {
				uc.logger.Warn("Auto-reply budget exhausted", "iterations", iteration, "maxAutoReplies", uc.cfg.MaxAutoReplies)
			}
			uc.metrics.ObserveAssistantRun(iteration)
			return &input.ExecuteResult{
				FinalAnswer: msg.Content,
				Iterations:  iteration,
				Final:       final,
			}, nil
		}

		replies++
		if !msg.HasToolCalls() {
			uc.logger.Info("Assistant answer is not final, nudging", "iteration", iteration)
			messages = append(messages, entity.Message{
				Role:    entity.RoleUser,
				Content: prompts.FinalAnswerNudge,
			})
			continue
		}

		for _, tc := range msg.ToolCalls {
			observation := uc.executeTool(ctx, tc)

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    observation,
			})
		}
	}
}

func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) string {
	tool, ok := uc.tools.Get(entity.ToolName(tc.Name))
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		return fmt.Sprintf("Error: unknown tool '%s'", tc.Name)
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		return "Error: " + err.Error()
	}

	result = truncate(result, maxObservationLen)

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "\n... (truncated)"
}
