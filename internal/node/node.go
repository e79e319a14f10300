// Package node implements the Agent Node: a bounded reasoning step that
// runs the ReAct loop (LLM call -> tool calls -> tool results -> LLM
// call) against one tool registry, until no tool calls remain or the
// round budget is exhausted.
package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/retry"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/internal/telemetry"
	"github.com/walterfan/agentcore/internal/tools"
	"github.com/walterfan/agentcore/internal/toolvalidate"
)

// DefaultStepBudget is the default maximum number of ReAct rounds per node
// invocation.
const DefaultStepBudget = 8

// DefaultCallTimeout is the default per-LLM-call timeout.
const DefaultCallTimeout = 30 * time.Second

// Node is a single bound reasoning step, parameterised by a system prompt,
// a tool registry slice, a step budget, and a per-call timeout.
type Node struct {
	Name        string
	SystemPrompt string
	Registry    *tools.Registry
	Client      model.Client
	Sink        *telemetry.Sink
	StepBudget  int
	CallTimeout time.Duration

	compiled map[tools.Ident]*toolvalidate.Compiled
}

// New constructs a Node, compiling every tool's argument schema once so
// the ReAct loop never re-parses it per round.
func New(name, systemPrompt string, registry *tools.Registry, client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*Node, error) {
	if stepBudget <= 0 {
		stepBudget = DefaultStepBudget
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	n := &Node{
		Name:         name,
		SystemPrompt: systemPrompt,
		Registry:     registry,
		Client:       client,
		Sink:         sink,
		StepBudget:   stepBudget,
		CallTimeout:  callTimeout,
		compiled:     make(map[tools.Ident]*toolvalidate.Compiled),
	}
	v := toolvalidate.New()
	for _, d := range registry.List() {
		c, err := v.Compile(string(d.Name), d.Schema)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", name, err)
		}
		n.compiled[d.Name] = c
	}
	return n, nil
}

// Run executes the ReAct loop against snapshot and req.Input, and returns
// the state delta plus the single A2A response message this invocation
// produces: exactly one A2A message per invocation, not per LLM round.
func (n *Node) Run(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message) {
	start := time.Now()
	var newEntries []state.MessageEntry
	toolCallCount := 0

	for round := 1; ; round++ {
		if round > n.StepBudget {
			return n.finalizeTimeout(ctx, req, newEntries, toolCallCount, start)
		}
		if err := ctx.Err(); err != nil {
			return n.finalizeCancelled(req, newEntries, toolCallCount, start)
		}

		messages := buildModelMessages(n.SystemPrompt, snapshot.Messages, newEntries)
		resp, llmErr := n.completeWithRetry(ctx, messages)
		if llmErr != nil {
			return n.finalizeLLMError(ctx, req, newEntries, toolCallCount, start, llmErr)
		}

		assistantEntry, toolUseCalls := responseToEntry(resp)
		newEntries = append(newEntries, assistantEntry)

		if n.Sink != nil {
			n.Sink.TraceLLMCall(ctx, "", "", model.Text(&model.Message{Parts: []model.Part{model.TextPart{Text: assistantEntry.Content}}}), time.Since(start))
		}

		if len(toolUseCalls) == 0 {
			return n.finalizeOK(req, newEntries, toolCallCount, start)
		}

		for _, call := range toolUseCalls {
			toolCallCount++
			entry := n.invokeTool(ctx, call)
			newEntries = append(newEntries, entry)
		}
	}
}

// invokeTool resolves, validates, and calls one tool, producing the tool
// message entry for the conversation. Validation and callable failures
// are recovered within the loop by feeding the error back as a tool
// message; they never escape Run.
func (n *Node) invokeTool(ctx context.Context, call model.ToolCall) state.MessageEntry {
	start := time.Now()
	descriptor, ok := n.Registry.Lookup(tools.Ident(call.Name))
	if !ok {
		if n.Sink != nil {
			n.Sink.TraceToolCall(ctx, n.Name, call.Name, call.Payload, nil, fmt.Errorf("unregistered tool"), time.Since(start))
		}
		return toolErrorEntry(call.ID, fmt.Sprintf("tool %q is not registered", call.Name))
	}

	if compiled := n.compiled[descriptor.Name]; compiled != nil {
		if err := compiled.Validate(call.Payload); err != nil {
			if n.Sink != nil {
				n.Sink.TraceToolCall(ctx, n.Name, call.Name, call.Payload, nil, err, time.Since(start))
			}
			return toolErrorEntry(call.ID, "invalid arguments: "+err.Error())
		}
	}

	result, err := descriptor.Call(ctx, call.Payload)
	if n.Sink != nil {
		n.Sink.TraceToolCall(ctx, n.Name, call.Name, call.Payload, result, err, time.Since(start))
	}
	if err != nil {
		return toolErrorEntry(call.ID, err.Error())
	}

	// A tool result that does not conform to the declared schema is
	// always serialised to a best-effort string, never raised.
	return state.MessageEntry{
		Role:       state.RoleTool,
		ToolCallID: call.ID,
		Content:    stringifyResult(result),
	}
}

func stringifyResult(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func toolErrorEntry(toolCallID, message string) state.MessageEntry {
	return state.MessageEntry{
		Role:       state.RoleTool,
		ToolCallID: toolCallID,
		Content:    message,
		IsError:    true,
	}
}

// completeWithRetry performs one LLM round, retrying retryable LLM_ERROR
// results per internal/retry's policy.
func (n *Node) completeWithRetry(ctx context.Context, messages []*model.Message) (*model.Response, *a2a.Error) {
	callCtx, cancel := context.WithTimeout(ctx, n.CallTimeout)
	defer cancel()

	toolDefs := toolDefinitions(n.Registry)
	req := &model.Request{Messages: messages, Tools: toolDefs}

	var resp *model.Response
	var classified *a2a.Error
	retryErr := retry.Do(callCtx, retry.LLMPolicy, func(err error) bool {
		return classify(err).Retryable
	}, func(ctx context.Context) error {
		r, err := n.Client.Complete(ctx, req)
		if err != nil {
			classified = classify(err)
			return err
		}
		resp = r
		return nil
	})
	if retryErr != nil {
		if classified == nil {
			classified = classify(retryErr)
		}
		return nil, classified
	}
	return resp, nil
}

func classify(err error) *a2a.Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &a2a.Error{Kind: a2a.ErrTimeout, Message: err.Error(), Retryable: true}
	case errors.Is(err, model.ErrRateLimited):
		return &a2a.Error{Kind: a2a.ErrLLM, Message: err.Error(), Retryable: true}
	default:
		return &a2a.Error{Kind: a2a.ErrLLM, Message: err.Error(), Retryable: false}
	}
}

func toolDefinitions(r *tools.Registry) []*model.ToolDefinition {
	list := r.List()
	defs := make([]*model.ToolDefinition, 0, len(list))
	for _, d := range list {
		defs = append(defs, &model.ToolDefinition{
			Name:        string(d.Name),
			Description: d.Description,
			InputSchema: d.Schema,
		})
	}
	return defs
}

func (n *Node) finalizeOK(req *a2a.Message, entries []state.MessageEntry, toolCalls int, start time.Time) (state.Delta, *a2a.Message) {
	delta := state.Delta{NewMessages: entries, CurrentStep: n.Name}
	resp := a2a.NewResponse(req, a2a.StatusOK, summarize(entries), nil, a2a.Metrics{
		LatencyMS: time.Since(start).Milliseconds(),
		ToolCalls: toolCalls,
	})
	return delta, resp
}

func (n *Node) finalizeTimeout(ctx context.Context, req *a2a.Message, entries []state.MessageEntry, toolCalls int, start time.Time) (state.Delta, *a2a.Message) {
	if n.Sink != nil {
		n.Sink.AgentCall(ctx, n.Name, string(a2a.StatusPartial))
	}
	errv := &a2a.Error{Kind: a2a.ErrTimeout, Message: "round budget exhausted", Retryable: true}
	delta := state.Delta{
		NewMessages: entries,
		CurrentStep: n.Name,
		Error:       &state.ErrorEntry{Step: n.Name, Kind: string(errv.Kind), Message: errv.Message, Retryable: errv.Retryable, At: time.Now().UTC()},
	}
	resp := a2a.NewResponse(req, a2a.StatusPartial, summarize(entries), errv, a2a.Metrics{
		LatencyMS: time.Since(start).Milliseconds(),
		ToolCalls: toolCalls,
	})
	return delta, resp
}

func (n *Node) finalizeCancelled(req *a2a.Message, entries []state.MessageEntry, toolCalls int, start time.Time) (state.Delta, *a2a.Message) {
	errv := &a2a.Error{Kind: a2a.ErrTimeout, Message: "cancelled", Retryable: false}
	delta := state.Delta{NewMessages: entries, CurrentStep: n.Name}
	resp := a2a.NewResponse(req, a2a.StatusPartial, summarize(entries), errv, a2a.Metrics{
		LatencyMS: time.Since(start).Milliseconds(),
		ToolCalls: toolCalls,
	})
	return delta, resp
}

func (n *Node) finalizeLLMError(ctx context.Context, req *a2a.Message, entries []state.MessageEntry, toolCalls int, start time.Time, errv *a2a.Error) (state.Delta, *a2a.Message) {
	if n.Sink != nil {
		n.Sink.AgentCall(ctx, n.Name, string(a2a.StatusError))
	}
	status := a2a.StatusError
	delta := state.Delta{
		NewMessages: entries,
		CurrentStep: n.Name,
		Error:       &state.ErrorEntry{Step: n.Name, Kind: string(errv.Kind), Message: errv.Message, Retryable: errv.Retryable, At: time.Now().UTC()},
	}
	resp := a2a.NewResponse(req, status, summarize(entries), errv, a2a.Metrics{
		LatencyMS: time.Since(start).Milliseconds(),
		ToolCalls: toolCalls,
	})
	return delta, resp
}

func summarize(entries []state.MessageEntry) any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{"role": e.Role, "content": e.Content})
	}
	return out
}

// buildModelMessages renders the system prompt plus prior conversation
// plus any new entries produced so far this invocation into the provider-
// agnostic model.Message shape the Client understands.
func buildModelMessages(systemPrompt string, history, pending []state.MessageEntry) []*model.Message {
	msgs := make([]*model.Message, 0, len(history)+len(pending)+1)
	if systemPrompt != "" {
		msgs = append(msgs, &model.Message{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: systemPrompt}}})
	}
	for _, e := range append(append([]state.MessageEntry{}, history...), pending...) {
		msgs = append(msgs, entryToModelMessage(e))
	}
	return msgs
}

func entryToModelMessage(e state.MessageEntry) *model.Message {
	switch e.Role {
	case state.RoleTool:
		return model.NewToolResult(e.ToolCallID, e.Content, e.IsError)
	case state.RoleAssistant:
		parts := make([]model.Part, 0, 1+len(e.ToolCalls))
		if e.Content != "" {
			parts = append(parts, model.TextPart{Text: e.Content})
		}
		for _, tc := range e.ToolCalls {
			parts = append(parts, model.ToolUsePart{ID: tc.ID, Name: tc.Name, Input: tc.Args})
		}
		return &model.Message{Role: model.RoleAssistant, Parts: parts}
	case state.RoleSystem:
		return &model.Message{Role: model.RoleSystem, Parts: []model.Part{model.TextPart{Text: e.Content}}}
	default:
		return model.NewUserText(e.Content)
	}
}

// responseToEntry converts an LLM Response into the assistant
// MessageEntry to append plus the ordered tool calls it declared (spec
// §4.4 step 4: "tool calls within one response may be executed
// sequentially; ordering must match the order the LLM emitted").
func responseToEntry(resp *model.Response) (state.MessageEntry, []model.ToolCall) {
	var text string
	for _, m := range resp.Content {
		text += model.Text(&m)
	}
	descriptors := make([]state.ToolCallDescriptor, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		descriptors = append(descriptors, state.ToolCallDescriptor{ID: tc.ID, Name: tc.Name, Args: json.RawMessage(tc.Payload)})
	}
	return state.MessageEntry{
		Role:      state.RoleAssistant,
		Content:   text,
		ToolCalls: descriptors,
	}, resp.ToolCalls
}
