package node

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/internal/telemetry"
	"github.com/walterfan/agentcore/internal/tools"
)

// scriptedClient replays one Response per Complete call, in order, so a
// test can script a multi-round ReAct exchange without a real provider.
type scriptedClient struct {
	responses []*model.Response
	errs      []error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, req *model.Request) (*model.Response, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	if i >= len(c.responses) {
		return &model.Response{}, nil
	}
	return c.responses[i], nil
}

func (c *scriptedClient) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	return nil, model.ErrStreamingUnsupported
}

func testSink() *telemetry.Sink {
	return telemetry.NewSink(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics(), telemetry.NewNoopTracer(), false)
}

func echoSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"value": map[string]any{"type": "string"}},
		"required":             []any{"value"},
		"additionalProperties": false,
	}
}

func echoRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r, err := tools.NewRegistry(tools.Descriptor{
		Name:        "echo",
		Description: "echoes back the value argument",
		Schema:      echoSchema(),
		Call: func(ctx context.Context, args json.RawMessage) (any, error) {
			var in struct {
				Value string `json:"value"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			return in.Value, nil
		},
	})
	require.NoError(t, err)
	return r
}

func newReq() *a2a.Message {
	return a2a.NewRequest("router", "echo-agent", "do-thing", "hello", "corr-1")
}

func TestRunFinalizesOKWithoutToolCalls(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{responses: []*model.Response{
		{Content: []model.Message{*model.NewAssistantText("all done")}},
	}}
	n, err := New("echo-agent", "you are helpful", echoRegistry(t), client, testSink(), 0, 0)
	require.NoError(t, err)

	delta, resp := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusOK, resp.Status)
	require.Nil(t, resp.Error)
	require.Len(t, delta.NewMessages, 1)
	require.Equal(t, state.RoleAssistant, delta.NewMessages[0].Role)
	require.Equal(t, "all done", delta.NewMessages[0].Content)
}

func TestRunExecutesToolCallThenFinalizes(t *testing.T) {
	t.Parallel()

	toolCallMsg := model.Message{
		Role: model.RoleAssistant,
		Parts: []model.Part{
			model.ToolUsePart{ID: "call-1", Name: "echo", Input: map[string]any{"value": "x"}},
		},
	}
	client := &scriptedClient{responses: []*model.Response{
		{Content: []model.Message{toolCallMsg}, ToolCalls: []model.ToolCall{
			{ID: "call-1", Name: "echo", Payload: json.RawMessage(`{"value":"x"}`)},
		}},
		{Content: []model.Message{*model.NewAssistantText("finished")}},
	}}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 0, 0)
	require.NoError(t, err)

	delta, resp := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusOK, resp.Status)
	require.Equal(t, 1, resp.Metrics.ToolCalls)

	var toolEntry *state.MessageEntry
	for i := range delta.NewMessages {
		if delta.NewMessages[i].Role == state.RoleTool {
			toolEntry = &delta.NewMessages[i]
		}
	}
	require.NotNil(t, toolEntry)
	require.False(t, toolEntry.IsError)
	require.Equal(t, "call-1", toolEntry.ToolCallID)
	require.Equal(t, "x", toolEntry.Content)
}

func TestRunFeedsBackValidationErrorWithoutInvokingCallable(t *testing.T) {
	t.Parallel()

	toolCallMsg := model.Message{
		Role: model.RoleAssistant,
		Parts: []model.Part{
			model.ToolUsePart{ID: "call-1", Name: "echo", Input: map[string]any{}},
		},
	}
	client := &scriptedClient{responses: []*model.Response{
		{Content: []model.Message{toolCallMsg}, ToolCalls: []model.ToolCall{
			{ID: "call-1", Name: "echo", Payload: json.RawMessage(`{}`)},
		}},
		{Content: []model.Message{*model.NewAssistantText("recovered")}},
	}}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 0, 0)
	require.NoError(t, err)

	delta, resp := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusOK, resp.Status)
	var toolEntry *state.MessageEntry
	for i := range delta.NewMessages {
		if delta.NewMessages[i].Role == state.RoleTool {
			toolEntry = &delta.NewMessages[i]
		}
	}
	require.NotNil(t, toolEntry)
	require.True(t, toolEntry.IsError)
}

func TestRunFeedsBackUnregisteredToolAsToolError(t *testing.T) {
	t.Parallel()

	toolCallMsg := model.Message{
		Role: model.RoleAssistant,
		Parts: []model.Part{
			model.ToolUsePart{ID: "call-1", Name: "nonexistent", Input: map[string]any{}},
		},
	}
	client := &scriptedClient{responses: []*model.Response{
		{Content: []model.Message{toolCallMsg}, ToolCalls: []model.ToolCall{
			{ID: "call-1", Name: "nonexistent", Payload: json.RawMessage(`{}`)},
		}},
		{Content: []model.Message{*model.NewAssistantText("recovered")}},
	}}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 0, 0)
	require.NoError(t, err)

	delta, _ := n.Run(context.Background(), *state.New(0), newReq())

	var toolEntry *state.MessageEntry
	for i := range delta.NewMessages {
		if delta.NewMessages[i].Role == state.RoleTool {
			toolEntry = &delta.NewMessages[i]
		}
	}
	require.NotNil(t, toolEntry)
	require.True(t, toolEntry.IsError)
}

func TestRunFinalizesPartialWhenStepBudgetExhausted(t *testing.T) {
	t.Parallel()

	toolCallMsg := model.Message{
		Role: model.RoleAssistant,
		Parts: []model.Part{
			model.ToolUsePart{ID: "call-1", Name: "echo", Input: map[string]any{"value": "x"}},
		},
	}
	resp := &model.Response{Content: []model.Message{toolCallMsg}, ToolCalls: []model.ToolCall{
		{ID: "call-1", Name: "echo", Payload: json.RawMessage(`{"value":"x"}`)},
	}}
	// Every round produces another tool call, so the node never naturally
	// converges and must hit the step budget.
	client := &scriptedClient{responses: []*model.Response{resp, resp, resp}}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 2, 0)
	require.NoError(t, err)

	delta, respMsg := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusPartial, respMsg.Status)
	require.NotNil(t, respMsg.Error)
	require.Equal(t, a2a.ErrTimeout, respMsg.Error.Kind)
	require.NotEmpty(t, delta.Error)
}

func TestRunRetriesRetryableLLMErrorThenSucceeds(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{
		errs:      []error{model.ErrRateLimited},
		responses: []*model.Response{nil, {Content: []model.Message{*model.NewAssistantText("ok now")}}},
	}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 0, 2*time.Second)
	require.NoError(t, err)

	_, resp := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusOK, resp.Status)
	require.Equal(t, 2, client.calls)
}

func TestRunFinalizesErrorOnNonRetryableLLMFailure(t *testing.T) {
	t.Parallel()

	client := &scriptedClient{errs: []error{context.Canceled}}
	n, err := New("echo-agent", "", echoRegistry(t), client, testSink(), 0, 0)
	require.NoError(t, err)

	_, resp := n.Run(context.Background(), *state.New(0), newReq())

	require.Equal(t, a2a.StatusError, resp.Status)
	require.NotNil(t, resp.Error)
}
