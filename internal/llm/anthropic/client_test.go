package anthropic

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/model"
)

type stubMessagesClient struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
}

func (s *stubMessagesClient) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func (s *stubMessagesClient) NewStreaming(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) *ssestream.Stream[sdk.MessageStreamEventUnion] {
	s.lastParams = body
	dec := &noopDecoder{}
	return ssestream.NewStream[sdk.MessageStreamEventUnion](dec, nil)
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
	stub := &stubMessagesClient{
		resp: &sdk.Message{
			Content:    []sdk.ContentBlockUnion{{Type: "text", Text: "world"}},
			StopReason: sdk.StopReasonEndTurn,
			Usage:      sdk.Usage{InputTokens: 10, OutputTokens: 5},
		},
	}
	cl, err := New(stub, Options{DefaultModel: "claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	resp, err := cl.Complete(context.Background(), textRequest("hello"))
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	require.Equal(t, "world", resp.Content[0].Parts[0].(model.TextPart).Text)
	require.Equal(t, 15, resp.Usage.TotalTokens)
	require.Equal(t, string(sdk.Model("claude-3-5-sonnet")), string(stub.lastParams.Model))
}

func TestCompleteWrapsRateLimitedError(t *testing.T) {
	stub := &stubMessagesClient{err: model.ErrRateLimited}
	cl, err := New(stub, Options{DefaultModel: "claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	_, err = cl.Complete(context.Background(), textRequest("hello"))
	require.ErrorIs(t, err, model.ErrRateLimited)
}

func TestCompleteTranslatesToolCall(t *testing.T) {
	stub := &stubMessagesClient{
		resp: &sdk.Message{
			Content: []sdk.ContentBlockUnion{
				{Type: "tool_use", ID: "call_1", Name: "save_learning", Input: []byte(`{"title":"x"}`)},
			},
			StopReason: sdk.StopReasonToolUse,
		},
	}
	cl, err := New(stub, Options{DefaultModel: "claude-3-5-sonnet", MaxTokens: 256})
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
	_, err := New(&stubMessagesClient{}, Options{})
	require.Error(t, err)
}

func TestCompleteRequiresMessages(t *testing.T) {
	cl, err := New(&stubMessagesClient{}, Options{DefaultModel: "claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	_, err = cl.Complete(context.Background(), &model.Request{})
	require.Error(t, err)
}

func TestStreamReturnsStreamerWithoutError(t *testing.T) {
	stub := &stubMessagesClient{}
	cl, err := New(stub, Options{DefaultModel: "claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	s, err := cl.Stream(context.Background(), textRequest("hello"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Recv()
	require.Error(t, err)
}
