package model

import "strings"

// NewUserText builds a single-part user message.
func NewUserText(text string) *Message {
	return &Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantText builds a single-part assistant message.
func NewAssistantText(text string) *Message {
	return &Message{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResult builds a user-role message carrying one tool result,
// matching the wire shape providers expect for feeding tool output back
// into the conversation.
func NewToolResult(toolUseID string, content any, isError bool) *Message {
	return &Message{
		Role: RoleUser,
		Parts: []Part{
			ToolResultPart{ToolUseID: toolUseID, Content: content, IsError: isError},
		},
	}
}

// Text concatenates every TextPart in a message, in order. Non-text parts
// are ignored.
func Text(msg *Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range msg.Parts {
		if t, ok := p.(TextPart); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// ToolUses returns every ToolUsePart declared by a message, in order.
func ToolUses(msg *Message) []ToolUsePart {
	if msg == nil {
		return nil
	}
	var out []ToolUsePart
	for _, p := range msg.Parts {
		if tu, ok := p.(ToolUsePart); ok {
			out = append(out, tu)
		}
	}
	return out
}
