package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextConcatenatesTextParts(t *testing.T) {
	t.Parallel()

	msg := &Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "hello "},
			ToolUsePart{ID: "1", Name: "get_datetime"},
			TextPart{Text: "world"},
		},
	}
	require.Equal(t, "hello world", Text(msg))
}

func TestToolUsesReturnsOnlyToolUseParts(t *testing.T) {
	t.Parallel()

	msg := &Message{
		Role: RoleAssistant,
		Parts: []Part{
			TextPart{Text: "thinking"},
			ToolUsePart{ID: "1", Name: "a"},
			ToolUsePart{ID: "2", Name: "b"},
		},
	}
	uses := ToolUses(msg)
	require.Len(t, uses, 2)
	require.Equal(t, "a", uses[0].Name)
	require.Equal(t, "b", uses[1].Name)
}
