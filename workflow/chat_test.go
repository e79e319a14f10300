package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/model"
	storememory "github.com/walterfan/agentcore/internal/store/memory"
	"github.com/walterfan/agentcore/internal/telemetry"
)

// scriptedClient replays one Response per Complete call, in order.
type scriptedClient struct {
	responses []*model.Response
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req *model.Request) (*model.Response, error) {
	i := c.calls
	c.calls++
	if i >= len(c.responses) {
		return &model.Response{}, nil
	}
	return c.responses[i], nil
}

func (c *scriptedClient) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	return nil, model.ErrStreamingUnsupported
}

func textResponse(text string) *model.Response {
	return &model.Response{Content: []model.Message{{Role: model.RoleAssistant, Parts: []model.Part{model.TextPart{Text: text}}}}}
}

func testSink() *telemetry.Sink {
	return telemetry.NewSink(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics(), telemetry.NewNoopTracer(), false)
}

func TestBuildChatClassifiesAndRespondsThenEnds(t *testing.T) {
	client := &scriptedClient{responses: []*model.Response{
		textResponse("utility"),      // ChatRouter.classify
		textResponse("2 is the sum"), // utility node's single round, no tool calls
	}}

	chat, err := BuildChat(Config{Client: client, Store: storememory.New(), Sink: testSink()})
	require.NoError(t, err)
	require.NotNil(t, chat.Stores)

	task, s := NewTask("chat", "what is 1 + 1?")
	final, err := chat.Executor.Run(context.Background(), task, s)
	require.NoError(t, err)
	require.Len(t, final.Messages, 2) // user message + utility's answer
}
