package openaicompat

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Hello, world!", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role: "assistant",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "search_research_papers",
					Arguments: `{"topic":"fruit","year":2021,"comparison":"after"}`,
				},
			},
		},
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_123", result.ToolCalls[0].ID)
	assert.Equal(t, "search_research_papers", result.ToolCalls[0].Name)
	assert.True(t, result.HasToolCalls())
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleUser, Content: "Hello"},
		{
			Role:      entity.RoleAssistant,
			ToolCalls: []entity.ToolCall{{ID: "c1", Name: "search_research_papers", Arguments: "{}"}},
		},
		{Role: entity.RoleTool, ToolCallID: "c1", Name: "search_research_papers", Content: "[]"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 3)
	assert.Equal(t, "user", result[0].Role)
	assert.Equal(t, "Hello", result[0].Content)
	require.Len(t, result[1].ToolCalls, 1)
	assert.Equal(t, openai.ToolTypeFunction, result[1].ToolCalls[0].Type)
	assert.Equal(t, "c1", result[2].ToolCallID)
	assert.Equal(t, "search_research_papers", result[2].Name)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]entity.ToolDefinition{{
		Name:        entity.ToolSearchResearchPapers,
		Description: "Search arXiv",
		Parameters:  map[string]interface{}{"type": "object"},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, "search_research_papers", tools[0].Function.Name)
	assert.Equal(t, "Search arXiv", tools[0].Function.Description)
}

func chatServer(t *testing.T, calls *int32, handler func(n int32, w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(n, w, body)
	}))
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "mistral-large-latest",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
}

func newTestAdapter(url string, retries int) *ChatAdapter {
	cfg := DefaultConfig("test-key", "mistral-large-latest")
	cfg.BaseURL = url
	cfg.MaxRetries = retries
	cfg.RetryWait = time.Millisecond
	cfg.Timeout = 5 * time.Second
	cfg.Logger = logger.NewNop()
	return NewChatAdapter(cfg)
}

func TestChat_SendsModelAndMessages(t *testing.T) {
	var calls int32
	srv := chatServer(t, &calls, func(_ int32, w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "mistral-large-latest", body["model"])
		assert.NotContains(t, body, "tool_choice")
		msgs, ok := body["messages"].([]any)
		require.True(t, ok)
		assert.Len(t, msgs, 2)
		writeCompletion(w, `{"completeness":5}`)
	})
	defer srv.Close()

	resp, err := newTestAdapter(srv.URL, 0).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "critic"},
			{Role: entity.RoleUser, Content: "Query: x"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"completeness":5}`, resp.Message.Content)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestChat_TemperatureOnlySentWhenNonZero(t *testing.T) {
	var calls int32
	var bodies []map[string]any
	srv := chatServer(t, &calls, func(_ int32, w http.ResponseWriter, body map[string]any) {
		bodies = append(bodies, body)
		writeCompletion(w, "ok")
	})
	defer srv.Close()

	a := newTestAdapter(srv.URL, 0)
	for _, temp := range []float32{0, math.SmallestNonzeroFloat32} {
		_, err := a.Chat(context.Background(), output.ChatRequest{
			Messages:    []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
			Temperature: temp,
		})
		require.NoError(t, err)
	}

	require.Len(t, bodies, 2)
	assert.NotContains(t, bodies[0], "temperature")
	assert.Contains(t, bodies[1], "temperature")
}

func TestChat_ToolChoiceWithTools(t *testing.T) {
	var calls int32
	srv := chatServer(t, &calls, func(_ int32, w http.ResponseWriter, body map[string]any) {
		assert.Equal(t, "auto", body["tool_choice"])
		writeCompletion(w, "done")
	})
	defer srv.Close()

	_, err := newTestAdapter(srv.URL, 0).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
		Tools: []entity.ToolDefinition{{
			Name:       entity.ToolSearchResearchPapers,
			Parameters: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		}},
	})

	require.NoError(t, err)
}

func TestChat_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := chatServer(t, &calls, func(n int32, w http.ResponseWriter, _ map[string]any) {
		if n < 3 {
			writeError(w, http.StatusBadGateway)
			return
		}
		writeCompletion(w, "recovered")
	})
	defer srv.Close()

	resp, err := newTestAdapter(srv.URL, 3).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Message.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChat_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := chatServer(t, &calls, func(_ int32, w http.ResponseWriter, _ map[string]any) {
		writeError(w, http.StatusUnauthorized)
	})
	defer srv.Close()

	_, err := newTestAdapter(srv.URL, 3).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *openai.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestChat_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := chatServer(t, &calls, func(_ int32, w http.ResponseWriter, _ map[string]any) {
		writeError(w, http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := newTestAdapter(srv.URL, 2).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, isRetryable(context.Canceled))
	assert.True(t, isRetryable(&openai.APIError{HTTPStatusCode: 429}))
	assert.True(t, isRetryable(&openai.APIError{HTTPStatusCode: 503}))
	assert.False(t, isRetryable(&openai.APIError{HTTPStatusCode: 400}))
	assert.True(t, isRetryable(&openai.RequestError{HTTPStatusCode: 502}))
}
