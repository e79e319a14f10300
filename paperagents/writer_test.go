package paperagents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeSectionsOrdersByIMRAD(t *testing.T) {
	tool := MergeSectionsDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{
		"sections": {
			"results": "Primary outcome improved.",
			"abstract": "Background and conclusions.",
			"methods": "Randomized design."
		}
	}`))
	require.NoError(t, err)
	manuscript := out.(map[string]any)["manuscript"].(string)

	abstractIdx := indexOf(manuscript, "Abstract")
	methodsIdx := indexOf(manuscript, "Methods")
	resultsIdx := indexOf(manuscript, "Results")
	require.True(t, abstractIdx < methodsIdx)
	require.True(t, methodsIdx < resultsIdx)
}

func TestMergeSectionsRequiresNonEmpty(t *testing.T) {
	tool := MergeSectionsDescriptor()
	_, err := tool.Call(context.Background(), json.RawMessage(`{"sections":{}}`))
	require.Error(t, err)
}

func TestReviseSectionAppendsFeedback(t *testing.T) {
	tool := ReviseSectionDescriptor()
	out, err := tool.Call(context.Background(), json.RawMessage(`{
		"section_type": "discussion",
		"current_content": "Original text.",
		"feedback": "add limitations"
	}`))
	require.NoError(t, err)
	require.Contains(t, out.(map[string]any)["content"], "add limitations")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
