package di

import (
	"fmt"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/application/service"
	"research-agent/internal/config"
	"research-agent/internal/infrastructure/arxiv"
	"research-agent/internal/infrastructure/llm/langchain"
	"research-agent/internal/infrastructure/llm/openaicompat"
	"research-agent/internal/infrastructure/logger"
	"research-agent/internal/infrastructure/metrics"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/usecase/evaluator"
	"research-agent/internal/usecase/executor"
	"research-agent/internal/usecase/orchestrator"
)

type Container struct {
	Logger    output.LoggerPort
	Metrics   *metrics.Recorder
	Search    *tool.SearchTool
	Evaluator *evaluator.Evaluator
	Assistant input.TaskExecutor
	Runner    input.ResearchRunner
	// MCPTools holds every tool offered to external MCP clients. The
	// assistant only sees the search tool.
	MCPTools output.ToolRegistry
}

type Options struct {
	// LogName names the per-run log file.
	LogName string
}

func NewContainer(cfg config.Config, opts Options) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{
		Dir:     cfg.Log.Dir,
		Name:    opts.LogName,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	recorder := metrics.New()

	llmCfg := openaicompat.DefaultConfig(cfg.LLM.APIKey, cfg.LLM.Model)
	llmCfg.BaseURL = cfg.LLM.BaseURL
	llmCfg.Timeout = cfg.LLM.Timeout
	llmCfg.MaxRetries = cfg.LLM.MaxRetries
	llmCfg.RetryWait = cfg.LLM.RetryWait
	llmCfg.Logger = log
	chat := openaicompat.NewChatAdapter(llmCfg)

	criticLLM, err := newCriticLLM(cfg, chat, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	searchCfg := arxiv.DefaultConfig()
	searchCfg.Endpoint = cfg.Search.Endpoint
	searchCfg.MaxResults = cfg.Search.MaxResults
	searchCfg.Timeout = cfg.Search.Timeout
	searchCfg.MaxRetries = cfg.Search.MaxRetries
	searchCfg.RetryWait = cfg.Search.RetryWait
	searchCfg.Logger = log
	searchCfg.Metrics = recorder
	search := tool.NewSearchTool(arxiv.NewClient(searchCfg), log)

	criticPrompt, err := prompts.GenerateCriticPrompt(prompts.CriticPrompt)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to render critic prompt: %w", err)
	}
	eval := evaluator.New(criticLLM, log, recorder, criticPrompt)

	assistantTools := service.NewToolRegistry()
	assistantTools.Register(search)

	assistant := executor.New(chat, assistantTools, log, recorder, executor.Config{
		SystemPrompt:   prompts.ResearchAssistantPrompt,
		MaxAutoReplies: cfg.Agent.MaxAutoReplies,
		Temperature:    cfg.LLM.Temperature,
	})

	mcpTools := service.NewToolRegistry()
	mcpTools.Register(search)
	mcpTools.Register(tool.NewEvaluateTool(eval))

	return &Container{
		Logger:    log,
		Metrics:   recorder,
		Search:    search,
		Evaluator: eval,
		Assistant: assistant,
		Runner:    orchestrator.New(assistant, eval, log),
		MCPTools:  mcpTools,
	}, nil
}

func newCriticLLM(cfg config.Config, chat output.LLMPort, log output.LoggerPort) (output.LLMPort, error) {
	if cfg.LLM.Provider != config.ProviderLangChain {
		return chat, nil
	}

	lc, err := langchain.New(langchain.Config{
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		Timeout:    cfg.LLM.Timeout,
		MaxRetries: cfg.LLM.MaxRetries,
		RetryWait:  cfg.LLM.RetryWait,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain critic: %w", err)
	}
	return lc, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
