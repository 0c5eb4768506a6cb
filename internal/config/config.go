// Package config holds the process configuration. It is assembled once at
// startup (defaults, then an optional YAML file, then environment variables)
// and passed explicitly to the components that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"research-agent/internal/application/port/output"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
)

var validate = validator.New()

type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Search SearchConfig `yaml:"search"`
	Agent  AgentConfig  `yaml:"agent"`
	Log    LogConfig    `yaml:"log"`
	HTTP   HTTPConfig   `yaml:"http"`
}

type LLMConfig struct {
	// Provider selects the critic backend. The research assistant needs tool
	// calling and always uses the OpenAI-compatible client.
	Provider    string        `yaml:"provider" validate:"oneof=openai langchain"`
	Model       string        `yaml:"model" validate:"required"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries  int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryWait   time.Duration `yaml:"retry_wait" validate:"gte=0"`
}

type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint" validate:"required,url"`
	MaxResults int           `yaml:"max_results" validate:"gte=1,lte=100"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries int           `yaml:"max_retries" validate:"gte=0,lte=10"`
	RetryWait  time.Duration `yaml:"retry_wait" validate:"gte=0"`
}

type AgentConfig struct {
	MaxAutoReplies int `yaml:"max_auto_replies" validate:"gte=1,lte=20"`
}

type LogConfig struct {
	Dir     string `yaml:"dir"`
	Level   string `yaml:"level" validate:"oneof=debug info warn error"`
	Console bool   `yaml:"console"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:    ProviderOpenAI,
			Model:       "mistral-large-latest",
			BaseURL:     "https://api.mistral.ai/v1",
			Temperature: 0.3,
			Timeout:     120 * time.Second,
			MaxRetries:  3,
			RetryWait:   5 * time.Second,
		},
		Search: SearchConfig{
			Endpoint:   "http://export.arxiv.org/api/query",
			MaxResults: 10,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryWait:  5 * time.Second,
		},
		Agent: AgentConfig{
			MaxAutoReplies: 3,
		},
		Log: LogConfig{
			Dir:   "log",
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// any), then environment overrides. The result is validated.
func Load(path string, env output.ConfigPort) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if env != nil {
		cfg.applyEnv(env)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(env output.ConfigPort) {
	c.LLM.Provider = env.GetWithDefault("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = env.GetWithDefault("LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = env.GetWithDefault("LLM_API_KEY", env.GetWithDefault("MISTRAL_API_KEY", c.LLM.APIKey))
	c.LLM.BaseURL = env.GetWithDefault("LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = float32(env.GetFloat("LLM_TEMPERATURE", float64(c.LLM.Temperature)))
	c.LLM.Timeout = env.GetDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxRetries = env.GetInt("LLM_MAX_RETRIES", c.LLM.MaxRetries)
	c.LLM.RetryWait = env.GetDuration("LLM_RETRY_WAIT", c.LLM.RetryWait)

	c.Search.Endpoint = env.GetWithDefault("ARXIV_ENDPOINT", c.Search.Endpoint)
	c.Search.MaxResults = env.GetInt("ARXIV_MAX_RESULTS", c.Search.MaxResults)
	c.Search.Timeout = env.GetDuration("ARXIV_TIMEOUT", c.Search.Timeout)
	c.Search.MaxRetries = env.GetInt("ARXIV_MAX_RETRIES", c.Search.MaxRetries)
	c.Search.RetryWait = env.GetDuration("ARXIV_RETRY_WAIT", c.Search.RetryWait)

	c.Agent.MaxAutoReplies = env.GetInt("AGENT_MAX_AUTO_REPLIES", c.Agent.MaxAutoReplies)

	c.Log.Dir = env.GetWithDefault("LOG_DIR", c.Log.Dir)
	c.Log.Level = env.GetWithDefault("LOG_LEVEL", c.Log.Level)
	c.Log.Console = env.GetBool("LOG_CONSOLE", c.Log.Console)

	c.HTTP.Addr = env.GetWithDefault("HTTP_ADDR", c.HTTP.Addr)
}

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireLLM reports whether the language-model settings are usable.
func (c Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm api key is not configured (set LLM_API_KEY or MISTRAL_API_KEY)")
	}
	return nil
}
