package state

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeAppendsMessagesAndOverwritesArtifacts(t *testing.T) {
	t.Parallel()

	s := New(3)
	s.Artifacts["references"] = []any{"a"}

	s.Merge(Delta{
		NewMessages: []MessageEntry{{Role: RoleAssistant, Content: "hi"}},
		Artifacts:   map[string]any{"stats_report": "done"},
		CurrentStep: "literature",
		NextAgent:   "stats",
	})

	require.Len(t, s.Messages, 1)
	require.Equal(t, "done", s.Artifacts["stats_report"])
	require.Equal(t, []any{"a"}, s.Artifacts["references"]) // preserved, not overwritten
	require.Equal(t, "literature", s.CurrentStep)
	require.Equal(t, "stats", s.NextAgent)
}

func TestMergeNeverMutatesRevisionRound(t *testing.T) {
	t.Parallel()

	s := New(3)
	s.RevisionRound = 1
	s.Merge(Delta{CurrentStep: "writer"})
	require.Equal(t, 1, s.RevisionRound)
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	t.Parallel()

	s := New(3)
	s.Messages = append(s.Messages, MessageEntry{Role: RoleUser, Content: "x"})
	snap := s.Snapshot()

	s.Messages = append(s.Messages, MessageEntry{Role: RoleUser, Content: "y"})
	require.Len(t, snap.Messages, 1)
	require.Len(t, s.Messages, 2)
}

func TestHasArtifactTreatsEmptyAsAbsent(t *testing.T) {
	t.Parallel()

	s := New(3)
	require.False(t, s.HasArtifact("references"))

	s.Artifacts["references"] = []any{}
	require.False(t, s.HasArtifact("references"))

	s.Artifacts["references"] = []any{"a"}
	require.True(t, s.HasArtifact("references"))
}
