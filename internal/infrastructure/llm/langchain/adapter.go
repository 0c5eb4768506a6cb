// Package langchain adapts a langchaingo model to output.LLMPort. It carries
// plain text only and serves as the alternative critic backend.
package langchain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/avast/retry-go/v4"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ output.LLMPort = (*Adapter)(nil)

var ErrToolsUnsupported = errors.New("langchain adapter does not support tool calling")

type generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	Logger     output.LoggerPort
}

type Adapter struct {
	model      generator
	maxRetries int
	retryWait  time.Duration
	logger     output.LoggerPort
}

func New(cfg Config) (*Adapter, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain model: %w", err)
	}
	return newAdapter(llm, cfg), nil
}

func newAdapter(model generator, cfg Config) *Adapter {
	return &Adapter{
		model:      model,
		maxRetries: cfg.MaxRetries,
		retryWait:  cfg.RetryWait,
		logger:     cfg.Logger,
	}
}

func (a *Adapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	if len(req.Tools) > 0 {
		return nil, ErrToolsUnsupported
	}

	messages, err := convertMessages(req.Messages)
	if err != nil {
		return nil, err
	}

	var resp *llms.ContentResponse
	err = retry.Do(
		func() error {
			r, err := a.model.GenerateContent(ctx, messages, llms.WithTemperature(float64(req.Temperature)))
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(a.maxRetries)+1),
		retry.Delay(a.retryWait),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if a.logger != nil {
				a.logger.Warn("Retrying content generation", "attempt", n+1, "error", err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return nil, fmt.Errorf("no choices in response")
	}

	return &output.ChatResponse{
		Message: entity.Message{
			Role:    entity.RoleAssistant,
			Content: resp.Choices[0].Content,
		},
	}, nil
}

func convertMessages(messages []entity.Message) ([]llms.MessageContent, error) {
	result := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		var role llms.ChatMessageType
		switch msg.Role {
		case entity.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case entity.RoleUser:
			role = llms.ChatMessageTypeHuman
		case entity.RoleAssistant:
			if msg.HasToolCalls() {
				return nil, ErrToolsUnsupported
			}
			role = llms.ChatMessageTypeAI
		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
		result = append(result, llms.TextParts(role, msg.Content))
	}
	return result, nil
}
