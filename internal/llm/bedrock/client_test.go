package bedrock

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/model"
)

type stubRuntimeClient struct {
	lastInput *bedrockruntime.ConverseInput
	resp      *bedrockruntime.ConverseOutput
	err       error
}

func (s *stubRuntimeClient) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.lastInput = params
	return s.resp, s.err
}

func (s *stubRuntimeClient) ConverseStream(_ context.Context, _ *bedrockruntime.ConverseStreamInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseStreamOutput, error) {
	return nil, errStreamNotStubbed
}

var errStreamNotStubbed = errors.New("stream not stubbed")

func textRequest(text string) *model.Request {
	return &model.Request{
		MaxTokens: 128,
		Messages: []*model.Message{
			{Role: model.RoleUser, Parts: []model.Part{model.TextPart{Text: text}}},
		},
	}
}

func TestCompleteTranslatesTextResponse(t *testing.T) {
	stub := &stubRuntimeClient{
		resp: &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{
				Value: brtypes.Message{
					Role: brtypes.ConversationRoleAssistant,
					Content: []brtypes.ContentBlock{
						&brtypes.ContentBlockMemberText{Value: "world"},
					},
				},
			},
			StopReason: brtypes.StopReasonEndTurn,
			Usage: &brtypes.TokenUsage{
				InputTokens:  aws.Int32(10),
				OutputTokens: aws.Int32(5),
				TotalTokens:  aws.Int32(15),
			},
		},
	}
	cl, err := New(stub, Options{DefaultModel: "anthropic.claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	resp, err := cl.Complete(context.Background(), textRequest("hello"))
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	require.Equal(t, "world", resp.Content[0].Parts[0].(model.TextPart).Text)
	require.Equal(t, 15, resp.Usage.TotalTokens)
	require.Equal(t, "anthropic.claude-3-5-sonnet", *stub.lastInput.ModelId)
}

func TestCompleteTranslatesToolCall(t *testing.T) {
	stub := &stubRuntimeClient{
		resp: &bedrockruntime.ConverseOutput{
			Output: &brtypes.ConverseOutputMemberMessage{
				Value: brtypes.Message{
					Role: brtypes.ConversationRoleAssistant,
					Content: []brtypes.ContentBlock{
						&brtypes.ContentBlockMemberToolUse{
							Value: brtypes.ToolUseBlock{
								ToolUseId: aws.String("call_1"),
								Name:      aws.String("save_learning"),
							},
						},
					},
				},
			},
			StopReason: brtypes.StopReasonToolUse,
		},
	}
	cl, err := New(stub, Options{DefaultModel: "anthropic.claude-3-5-sonnet", MaxTokens: 256})
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
	_, err := New(&stubRuntimeClient{}, Options{})
	require.Error(t, err)
}

func TestCompleteRequiresMessages(t *testing.T) {
	cl, err := New(&stubRuntimeClient{}, Options{DefaultModel: "anthropic.claude-3-5-sonnet", MaxTokens: 256})
	require.NoError(t, err)

	_, err = cl.Complete(context.Background(), &model.Request{})
	require.Error(t, err)
}
