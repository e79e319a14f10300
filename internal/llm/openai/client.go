// Package openai provides a model.Client implementation backed by the
// OpenAI Chat Completions API, translating internal/model requests into
// openai.ChatCompletionNewParams calls using github.com/openai/openai-go
// and mapping responses back into the generic model structures.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/ssestream"

	"github.com/walterfan/agentcore/internal/model"
)

type (
	// ChatClient captures the subset of the OpenAI SDK client the adapter
	// uses. It is satisfied by *openai.ChatCompletionService, so callers
	// can pass either a real client or a fake in tests.
	ChatClient interface {
		New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
		NewStreaming(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) *ssestream.Stream[openai.ChatCompletionChunk]
	}

	// Options configures the OpenAI adapter.
	Options struct {
		// DefaultModel is used when model.Request.Model is empty.
		DefaultModel string

		// MaxTokens is the completion cap used when a request does not
		// set Request.MaxTokens.
		MaxTokens int

		// Temperature is used when a request does not set Request.Temperature.
		Temperature float64
	}

	// Client implements model.Client on top of the OpenAI Chat
	// Completions API.
	Client struct {
		chat         ChatClient
		defaultModel string
		maxTok       int
		temp         float64
	}
)

// New builds an OpenAI-backed model client from the given Chat
// Completions client and configuration.
func New(chat ChatClient, opts Options) (*Client, error) {
	if chat == nil {
		return nil, errors.New("openai: chat completions client is required")
	}
	modelID := strings.TrimSpace(opts.DefaultModel)
	if modelID == "" {
		return nil, errors.New("openai: default model is required")
	}
	return &Client{chat: chat, defaultModel: modelID, maxTok: opts.MaxTokens, temp: opts.Temperature}, nil
}

// NewFromAPIKey constructs a client using the default OpenAI HTTP client.
func NewFromAPIKey(apiKey, defaultModel string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openai: api key is required")
	}
	cl := openai.NewClient(option.WithAPIKey(apiKey))
	return New(&cl.Chat.Completions, Options{DefaultModel: defaultModel})
}

var _ model.Client = (*Client)(nil)

// Complete renders a chat completion using the configured OpenAI client.
func (c *Client) Complete(ctx context.Context, req *model.Request) (*model.Response, error) {
	params, err := c.prepareParams(req)
	if err != nil {
		return nil, err
	}
	resp, err := c.chat.New(ctx, *params)
	if err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("%w: %w", model.ErrRateLimited, err)
		}
		return nil, fmt.Errorf("openai: chat completions.new: %w", err)
	}
	return translateResponse(resp), nil
}

// Stream invokes Chat Completions streaming and adapts incremental chunks
// into model.Chunks.
func (c *Client) Stream(ctx context.Context, req *model.Request) (model.Streamer, error) {
	params, err := c.prepareParams(req)
	if err != nil {
		return nil, err
	}
	stream := c.chat.NewStreaming(ctx, *params)
	if err := stream.Err(); err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("%w: %w", model.ErrRateLimited, err)
		}
		return nil, fmt.Errorf("openai: chat completions.new stream: %w", err)
	}
	return newStreamer(ctx, stream), nil
}

func (c *Client) prepareParams(req *model.Request) (*openai.ChatCompletionNewParams, error) {
	if len(req.Messages) == 0 {
		return nil, errors.New("openai: messages are required")
	}
	modelID := strings.TrimSpace(req.Model)
	if modelID == "" {
		modelID = c.defaultModel
	}
	messages, err := encodeMessages(req.Messages)
	if err != nil {
		return nil, err
	}
	tools, err := encodeTools(req.Tools)
	if err != nil {
		return nil, err
	}
	params := openai.ChatCompletionNewParams{
		Model:    modelID,
		Messages: messages,
	}
	if len(tools) > 0 {
		params.Tools = tools
	}
	if maxTokens := c.effectiveMaxTokens(req.MaxTokens); maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if temp := c.effectiveTemperature(req.Temperature); temp > 0 {
		params.Temperature = openai.Float(temp)
	}
	return &params, nil
}

func (c *Client) effectiveMaxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	return c.maxTok
}

func (c *Client) effectiveTemperature(requested float32) float64 {
	if requested > 0 {
		return float64(requested)
	}
	return c.temp
}

func encodeMessages(msgs []*model.Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		text, toolCalls, toolResults := splitParts(m.Parts)
		switch m.Role {
		case model.RoleSystem:
			if text != "" {
				out = append(out, openai.SystemMessage(text))
			}
		case model.RoleUser:
			for _, tr := range toolResults {
				out = append(out, openai.ToolMessage(toolResultContent(tr), tr.ToolUseID))
			}
			if text != "" {
				out = append(out, openai.UserMessage(text))
			}
		case model.RoleAssistant:
			if len(toolCalls) == 0 {
				if text != "" {
					out = append(out, openai.AssistantMessage(text))
				}
				continue
			}
			calls := make([]openai.ChatCompletionMessageToolCallParam, 0, len(toolCalls))
			for _, tc := range toolCalls {
				args, err := json.Marshal(tc.Input)
				if err != nil {
					return nil, fmt.Errorf("openai: marshal tool_use %q arguments: %w", tc.Name, err)
				}
				calls = append(calls, openai.ChatCompletionMessageToolCallParam{
					ID: tc.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      tc.Name,
						Arguments: string(args),
					},
				})
			}
			assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: calls}
			if text != "" {
				assistant.Content.OfString = openai.String(text)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		default:
			return nil, fmt.Errorf("openai: unsupported message role %q", m.Role)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("openai: at least one message is required")
	}
	return out, nil
}

func splitParts(parts []model.Part) (text string, toolCalls []model.ToolUsePart, toolResults []model.ToolResultPart) {
	var b strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case model.TextPart:
			b.WriteString(v.Text)
		case model.ToolUsePart:
			toolCalls = append(toolCalls, v)
		case model.ToolResultPart:
			toolResults = append(toolResults, v)
		case model.ThinkingPart:
			// OpenAI Chat Completions has no reasoning-content input slot.
		}
	}
	return b.String(), toolCalls, toolResults
}

func toolResultContent(v model.ToolResultPart) string {
	switch c := v.Content.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	default:
		if data, err := json.Marshal(c); err == nil {
			return string(data)
		}
		return ""
	}
}

func encodeTools(defs []*model.ToolDefinition) ([]openai.ChatCompletionToolParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, def := range defs {
		if def == nil || def.Name == "" {
			continue
		}
		params, err := toFunctionParameters(def.InputSchema)
		if err != nil {
			return nil, fmt.Errorf("openai: tool %q schema: %w", def.Name, err)
		}
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  params,
			},
		})
	}
	return out, nil
}

func toFunctionParameters(schema any) (openai.FunctionParameters, error) {
	if schema == nil {
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}, nil
	}
	var raw json.RawMessage
	switch v := schema.(type) {
	case json.RawMessage:
		raw = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return openai.FunctionParameters(m), nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return errors.Is(err, model.ErrRateLimited)
}

func translateResponse(resp *openai.ChatCompletion) *model.Response {
	out := &model.Response{}
	for _, choice := range resp.Choices {
		msg := choice.Message
		if strings.TrimSpace(msg.Content) != "" {
			out.Content = append(out.Content, model.Message{
				Role:  model.RoleAssistant,
				Parts: []model.Part{model.TextPart{Text: msg.Content}},
			})
		}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:      call.ID,
				Name:    call.Function.Name,
				Payload: parseToolArguments(call.Function.Arguments),
			})
		}
	}
	out.Usage = model.TokenUsage{
		InputTokens:  int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:  int(resp.Usage.TotalTokens),
	}
	if len(resp.Choices) > 0 {
		out.StopReason = string(resp.Choices[0].FinishReason)
	}
	return out
}

func parseToolArguments(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	return json.RawMessage(trimmed)
}
