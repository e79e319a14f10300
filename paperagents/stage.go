package paperagents

import (
	"context"
	"encoding/json"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/executor"
	"github.com/walterfan/agentcore/internal/node"
	"github.com/walterfan/agentcore/internal/state"
)

// StageNode wraps an internal/node.Node with the paper pipeline's
// artifact-binding rule: the executor's PaperRouter advances past a
// stage only once its primary artifact key is present in State (spec
// §4.6), but the generic Agent Node has no notion of "this tool result
// is the stage's artifact" — that binding is this package's concern, not
// the core's, so it lives here rather than in internal/node.
type StageNode struct {
	*node.Node

	// ArtifactKey is the state.Artifacts key this stage must leave
	// behind on a non-error completion (matches the corresponding
	// internal/executor.Executor.RequiredArtifacts entry).
	ArtifactKey string

	// ArtifactTools names the tool(s) whose result becomes the stage's
	// artifact; the last matching non-error tool result in the round
	// wins.
	ArtifactTools []string
}

// Run executes the wrapped node and, when one of ArtifactTools was
// called successfully, copies its result into the returned Delta under
// ArtifactKey.
func (s *StageNode) Run(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message) {
	delta, resp := s.Node.Run(ctx, snapshot, req)
	if value, ok := lastToolResult(delta.NewMessages, s.ArtifactTools); ok {
		if delta.Artifacts == nil {
			delta.Artifacts = make(map[string]any)
		}
		delta.Artifacts[s.ArtifactKey] = value
	}
	return delta, resp
}

var _ executor.Node = (*StageNode)(nil)

// lastToolResult scans entries for the last non-error tool message whose
// originating call matched one of names, and decodes its JSON content.
func lastToolResult(entries []state.MessageEntry, names []string) (any, bool) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	nameByCallID := make(map[string]string)
	for _, e := range entries {
		if e.Role != state.RoleAssistant {
			continue
		}
		for _, tc := range e.ToolCalls {
			nameByCallID[tc.ID] = tc.Name
		}
	}

	var found any
	ok := false
	for _, e := range entries {
		if e.Role != state.RoleTool || e.IsError {
			continue
		}
		if !wanted[nameByCallID[e.ToolCallID]] {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(e.Content), &v); err != nil {
			continue
		}
		found = v
		ok = true
	}
	return found, ok
}
