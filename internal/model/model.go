// Package model defines the provider-agnostic request/response types the
// Agent Node (internal/node) uses to talk to an LLM, and the Client
// interface concrete provider adapters (internal/llm/...) implement.
// This is the LLM provider collaborator: only its contract lives in
// the core, never a vendor encoding.
package model

import (
	"context"
	"encoding/json"
	"errors"
)

// ConversationRole is the role for a message in a conversation.
type ConversationRole string

const (
	RoleSystem    ConversationRole = "system"
	RoleUser      ConversationRole = "user"
	RoleAssistant ConversationRole = "assistant"
)

type (
	// Part is a marker interface implemented by all message content
	// blocks: plain text, provider reasoning, and tool use/result.
	Part interface{ isPart() }

	// TextPart is a plain text content block.
	TextPart struct{ Text string }

	// ThinkingPart carries provider-issued reasoning content. Callers
	// treat it as opaque and surface it only where UI policy allows.
	ThinkingPart struct {
		Text      string
		Signature string
	}

	// ToolUsePart declares a tool invocation requested by the assistant.
	ToolUsePart struct {
		ID    string
		Name  string
		Input any
	}

	// ToolResultPart carries a tool result fed back to the model.
	ToolResultPart struct {
		ToolUseID string
		Content   any
		IsError   bool
	}

	// Message is a single chat message: an ordered list of content parts
	// under one role.
	Message struct {
		Role  ConversationRole
		Parts []Part
	}

	// ToolDefinition describes one tool exposed to the model: its name,
	// a description used to decide when to call it, and its JSON Schema
	// argument shape.
	ToolDefinition struct {
		Name        string
		Description string
		InputSchema any
	}

	// ToolCall is a tool invocation requested by the model.
	ToolCall struct {
		ID      string
		Name    string
		Payload json.RawMessage
	}

	// TokenUsage tracks token counts for one model call.
	TokenUsage struct {
		InputTokens  int
		OutputTokens int
		TotalTokens  int
	}

	// Request captures the inputs to one model invocation.
	Request struct {
		Model       string
		Messages    []*Message
		Temperature float32
		Tools       []*ToolDefinition
		MaxTokens   int
		Stream      bool
	}

	// Response is the result of a non-streaming invocation.
	Response struct {
		Content    []Message
		ToolCalls  []ToolCall
		Usage      TokenUsage
		StopReason string
	}

	// Chunk is one streaming event from the model.
	Chunk struct {
		Type       string
		Message    *Message
		ToolCall   *ToolCall
		UsageDelta *TokenUsage
		StopReason string
	}

	// Client is the provider-agnostic model client every internal/llm/*
	// adapter implements.
	Client interface {
		Complete(ctx context.Context, req *Request) (*Response, error)
		Stream(ctx context.Context, req *Request) (Streamer, error)
	}

	// Streamer delivers incremental model output. Callers drain it until
	// Recv returns io.EOF, then Close it.
	Streamer interface {
		Recv() (Chunk, error)
		Close() error
	}
)

const (
	ChunkTypeText     = "text"
	ChunkTypeToolCall = "tool_call"
	ChunkTypeThinking = "thinking"
	ChunkTypeUsage    = "usage"
	ChunkTypeStop     = "stop"
)

// ErrStreamingUnsupported indicates the provider adapter does not support
// streaming for this request; callers fall back to Complete.
var ErrStreamingUnsupported = errors.New("model: streaming not supported")

// ErrRateLimited indicates the provider rejected the request due to rate
// limiting. This is the LLM_ERROR case internal/retry treats as retryable.
var ErrRateLimited = errors.New("model: rate limited")

func (TextPart) isPart()       {}
func (ThinkingPart) isPart()   {}
func (ToolUsePart) isPart()    {}
func (ToolResultPart) isPart() {}
