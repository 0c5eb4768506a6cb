package langchain

import (
	"context"
	"errors"
	"testing"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	errs     []error
	content  string
	calls    int
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.content}}}, nil
}

func textOf(t *testing.T, mc llms.MessageContent) string {
	t.Helper()
	require.Len(t, mc.Parts, 1)
	part, ok := mc.Parts[0].(llms.TextContent)
	require.True(t, ok)
	return part.Text
}

func TestChat_TextRoundTrip(t *testing.T) {
	model := &fakeModel{content: `{"completeness":5}`}
	a := newAdapter(model, Config{})

	resp, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "critic"},
			{Role: entity.RoleUser, Content: "Query: q"},
		},
		Temperature: 0,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleAssistant, resp.Message.Role)
	assert.Equal(t, `{"completeness":5}`, resp.Message.Content)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, "critic", textOf(t, model.messages[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, float64(0), model.opts.Temperature)
}

func TestChat_RejectsTools(t *testing.T) {
	model := &fakeModel{}
	a := newAdapter(model, Config{})

	_, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
		Tools:    []entity.ToolDefinition{{Name: entity.ToolSearchResearchPapers}},
	})

	assert.ErrorIs(t, err, ErrToolsUnsupported)
	assert.Equal(t, 0, model.calls)
}

func TestChat_RejectsToolMessages(t *testing.T) {
	a := newAdapter(&fakeModel{}, Config{})

	_, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleTool, Content: "[]", ToolCallID: "c1"}},
	})

	assert.Error(t, err)
}

func TestChat_Retries(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("503")}, content: "ok"}
	a := newAdapter(model, Config{MaxRetries: 2})

	resp, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Message.Content)
	assert.Equal(t, 2, model.calls)
}

func TestChat_GivesUp(t *testing.T) {
	model := &fakeModel{errs: []error{errors.New("a"), errors.New("b")}}
	a := newAdapter(model, Config{MaxRetries: 1})

	_, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, 2, model.calls)
}

func TestNew_BuildsModel(t *testing.T) {
	a, err := New(Config{APIKey: "k", Model: "mistral-large-latest", BaseURL: "http://localhost:1/v1"})

	require.NoError(t, err)
	assert.NotNil(t, a.model)
}
