package openai

import (
	"context"
	"errors"
	"testing"

	"school-assist-be/pkg/llm"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChatService struct {
	resp   *openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = params
	return m.resp, m.err
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	mock := &mockChatService{resp: &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: `{"new_response":"hi","old_response_summary":"sum"}`}},
		},
	}}
	p := newWithService("gpt-4o-mini", mock)

	out, err := p.Generate(context.Background(), "hello", llm.WithJSONSchema("chat_turn", map[string]any{"type": "object"}))
	require.NoError(t, err)
	assert.Equal(t, `{"new_response":"hi","old_response_summary":"sum"}`, out)
	require.NotNil(t, mock.params.ResponseFormat.OfJSONSchema)
	assert.Equal(t, "chat_turn", mock.params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
	assert.Len(t, mock.params.Messages, 1)
}

func TestGenerate_NoChoices(t *testing.T) {
	p := newWithService("gpt-4o-mini", &mockChatService{resp: &openai.ChatCompletion{}})

	_, err := p.Generate(context.Background(), "hello")
	assert.Error(t, err)
}

func TestGenerate_WrapsError(t *testing.T) {
	cause := errors.New("boom")
	p := newWithService("gpt-4o-mini", &mockChatService{err: cause})

	_, err := p.Generate(context.Background(), "hello")
	assert.ErrorIs(t, err, cause)
}
