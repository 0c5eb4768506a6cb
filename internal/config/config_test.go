package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"research-agent/internal/infrastructure/env"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mistral-large-latest", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Agent.MaxAutoReplies)
	assert.Equal(t, 10, cfg.Search.MaxResults)
	assert.Error(t, cfg.RequireLLM())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "research.yaml")
	yamlDoc := `
llm:
  model: mistral-small-latest
  timeout: 45s
  max_retries: 1
search:
  max_results: 5
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	t.Setenv("LLM_API_KEY", "")
	t.Setenv("MISTRAL_API_KEY", "secret")
	t.Setenv("LLM_TEMPERATURE", "0")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("ARXIV_RETRY_WAIT", "10ms")

	cfg, err := Load(path, &env.EnvService{})
	require.NoError(t, err)

	assert.Equal(t, "mistral-small-latest", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1, cfg.LLM.MaxRetries)
	assert.Equal(t, "https://api.mistral.ai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, float32(0), cfg.LLM.Temperature)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 10*time.Millisecond, cfg.Search.RetryWait)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.NoError(t, cfg.RequireLLM())
}

func TestLoad_LLMAPIKeyWinsOverMistral(t *testing.T) {
	t.Setenv("LLM_API_KEY", "primary")
	t.Setenv("MISTRAL_API_KEY", "secondary")

	cfg, err := Load("", &env.EnvService{})
	require.NoError(t, err)

	assert.Equal(t, "primary", cfg.LLM.APIKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		key   string
		value string
	}{
		{"LLM_PROVIDER", "carrier-pigeon"},
		{"LLM_BASE_URL", "not a url"},
		{"LOG_LEVEL", "loud"},
		{"AGENT_MAX_AUTO_REPLIES", "0"},
		{"ARXIV_MAX_RESULTS", "1000"},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)

			_, err := Load("", &env.EnvService{})
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o600))

	_, err := Load(path, nil)
	assert.Error(t, err)
}
