package openai

import (
	"context"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"
	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/model"
)

type stubChatClient struct {
	lastParams openai.ChatCompletionNewParams
	resp       *openai.ChatCompletion
	err        error
}

func (s *stubChatClient) New(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) (*openai.ChatCompletion, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubChatClient) NewStreaming(_ context.Context, body openai.ChatCompletionNewParams, _ ...option.RequestOption) *ssestream.Stream[openai.ChatCompletionChunk] {
	s.lastParams = body
	return ssestream.NewStream[openai.ChatCompletionChunk](&noopDecoder{}, nil)
}

type noopDecoder struct{}

func (n *noopDecoder) Event() ssestream.Event { return ssestream.Event{} }
func (n *noopDecoder) Next() bool             { return false }
func (n *noopDecoder) Close() error           { return nil }
func (n *noopDecoder) Err() error             { return nil }

func textRequest(text string) *model.Request {
	return &model.Request{
		MaxTokens: 128,
		Messages: []*model.Message{
			{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: text}}},
		},
	}
}

func TestCompleteTranslatesTextResponse(t *testing.T) {
	stub := &stubChatClient{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{
					Message:      openai.ChatCompletionMessage{Content: "world"},
					FinishReason: "stop",
				},
			},
			Usage: openai.CompletionUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
	}
	cl, err := New(stub, Options{DefaultModel: "gpt-4o-mini"})
	require.NoError(t, err)

	resp, err := cl.Complete(context.Background(), textRequest("hello"))
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	require.Equal(t, "world", resp.Content[0].Parts[0].(model.TextPart).Text)
	require.Equal(t, 15, resp.Usage.TotalTokens)
	require.Equal(t, "gpt-4o-mini", stub.lastParams.Model)
}

func TestCompleteTranslatesToolCall(t *testing.T) {
	stub := &stubChatClient{
		resp: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						ToolCalls: []openai.ChatCompletionMessageToolCall{
							{ID: "call_1", Function: openai.ChatCompletionMessageToolCallFunction{Name: "save_learning", Arguments: `{"title":"x"}`}},
						},
					},
					FinishReason: "tool_calls",
				},
			},
		},
	}
	cl, err := New(stub, Options{DefaultModel: "gpt-4o-mini"})
	require.NoError(t, err)

	req := textRequest("remember this")
	req.Tools = []*model.ToolDefinition{
		{Name: "save_learning", Description: "saves a learning", InputSchema: map[string]any{"type": "object"}},
	}

	resp, err := cl.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "save_learning", resp.ToolCalls[0].Name)
	require.Equal(t, "call_1", resp.ToolCalls[0].ID)
}

func TestNewRequiresDefaultModel(t *testing.T) {
	_, err := New(&stubChatClient{}, Options{})
	require.Error(t, err)
}

func TestCompleteRequiresMessages(t *testing.T) {
	cl, err := New(&stubChatClient{}, Options{DefaultModel: "gpt-4o-mini"})
	require.NoError(t, err)

	_, err = cl.Complete(context.Background(), &model.Request{})
	require.Error(t, err)
}

func TestStreamReturnsStreamerWithoutError(t *testing.T) {
	stub := &stubChatClient{}
	cl, err := New(stub, Options{DefaultModel: "gpt-4o-mini"})
	require.NoError(t, err)

	s, err := cl.Stream(context.Background(), textRequest("hello"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Recv()
	require.Error(t, err)
}
