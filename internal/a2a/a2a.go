// Package a2a defines the inter-agent message contract exchanged between
// the supervisor and agent nodes. The contract is purely data; it has no
// behaviour beyond the factory functions below.
package a2a

import (
	"time"

	"github.com/google/uuid"
)

// ProtocolVersion is the version tag carried on every message.
const ProtocolVersion = "a2a.v1"

// Status classifies the outcome of one inter-agent exchange.
type Status string

const (
	StatusOK              Status = "ok"
	StatusPartial         Status = "partial"
	StatusError           Status = "error"
	StatusTimeout         Status = "timeout"
	StatusValidationError Status = "validation_error"
	StatusToolError       Status = "tool_error"
)

// ErrorKind is the fixed, stable taxonomy of failure classes.
type ErrorKind string

const (
	ErrValidation ErrorKind = "VALIDATION_ERROR"
	ErrTool       ErrorKind = "TOOL_ERROR"
	ErrLLM        ErrorKind = "LLM_ERROR"
	ErrTimeout    ErrorKind = "TIMEOUT"
	ErrUnknown    ErrorKind = "UNKNOWN"
)

// Error is the typed error carried on a Message.
type Error struct {
	Kind      ErrorKind `json:"kind"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return string(e.Kind) + ": " + e.Message
}

// Metrics records per-exchange timing and token usage.
type Metrics struct {
	LatencyMS int64 `json:"latency_ms"`
	TokensIn  int64 `json:"tokens_in,omitempty"`
	TokensOut int64 `json:"tokens_out,omitempty"`
	ToolCalls int   `json:"tool_calls,omitempty"`
}

// Message is the immutable record persisted once per node completion.
type Message struct {
	Protocol      string    `json:"protocol"`
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`

	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Intent   string `json:"intent"`
	Status   Status `json:"status"`

	Input  any `json:"input"`
	Output any `json:"output"`

	Error   *Error  `json:"error,omitempty"`
	Metrics Metrics `json:"metrics"`
}

// NewRequest builds a request-shaped message addressed to receiver. Status
// is left empty; callers set it via NewResponse once the exchange
// completes.
func NewRequest(sender, receiver, intent string, input any, correlationID string) *Message {
	return &Message{
		Protocol:      ProtocolVersion,
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Timestamp:     time.Now().UTC(),
		Sender:        sender,
		Receiver:      receiver,
		Intent:        intent,
		Input:         input,
	}
}

// NewResponse derives a response message from a prior request, swapping
// sender/receiver and attaching the outcome.
func NewResponse(req *Message, status Status, output any, err *Error, metrics Metrics) *Message {
	return &Message{
		Protocol:      ProtocolVersion,
		ID:            uuid.NewString(),
		CorrelationID: req.CorrelationID,
		Timestamp:     time.Now().UTC(),
		Sender:        req.Receiver,
		Receiver:      req.Sender,
		Intent:        req.Intent,
		Status:        status,
		Input:         req.Input,
		Output:        output,
		Error:         err,
		Metrics:       metrics,
	}
}

// Unknown builds the UNKNOWN-kind error used for programming errors and
// invariant violations: missing correlation id, unregistered status, a
// node finishing without producing its required artifact, and so on.
func Unknown(message string) *Error {
	return &Error{Kind: ErrUnknown, Message: message, Retryable: false}
}
