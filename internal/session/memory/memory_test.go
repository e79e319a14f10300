package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/session"
)

func TestCreateSessionIsIdempotentForActiveSessions(t *testing.T) {
	t.Parallel()

	s := New()
	now := time.Now().UTC()
	first, err := s.CreateSession(context.Background(), "sess-1", now)
	require.NoError(t, err)

	second, err := s.CreateSession(context.Background(), "sess-1", now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCreateSessionAfterEndReturnsErrSessionEnded(t *testing.T) {
	t.Parallel()

	s := New()
	now := time.Now().UTC()
	_, err := s.CreateSession(context.Background(), "sess-1", now)
	require.NoError(t, err)
	_, err = s.EndSession(context.Background(), "sess-1", now.Add(time.Minute))
	require.NoError(t, err)

	_, err = s.CreateSession(context.Background(), "sess-1", now)
	require.ErrorIs(t, err, session.ErrSessionEnded)
}

func TestLoadSessionUnknownReturnsErrSessionNotFound(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.LoadSession(context.Background(), "missing")
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	t.Parallel()

	s := New()
	now := time.Now().UTC()
	_, err := s.CreateSession(context.Background(), "sess-1", now)
	require.NoError(t, err)

	first, err := s.EndSession(context.Background(), "sess-1", now.Add(time.Minute))
	require.NoError(t, err)
	second, err := s.EndSession(context.Background(), "sess-1", now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpsertRunThenListRunsBySessionFiltersByStatus(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.UpsertRun(context.Background(), session.RunMeta{
		RunID: "run-1", AgentID: "chat", SessionID: "sess-1", Status: session.RunStatusRunning,
	}))
	require.NoError(t, s.UpsertRun(context.Background(), session.RunMeta{
		RunID: "run-2", AgentID: "chat", SessionID: "sess-1", Status: session.RunStatusCompleted,
	}))

	running, err := s.ListRunsBySession(context.Background(), "sess-1", []session.RunStatus{session.RunStatusRunning})
	require.NoError(t, err)
	require.Len(t, running, 1)
	require.Equal(t, "run-1", running[0].RunID)

	all, err := s.ListRunsBySession(context.Background(), "sess-1", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestLoadRunUnknownReturnsErrRunNotFound(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.LoadRun(context.Background(), "missing")
	require.ErrorIs(t, err, session.ErrRunNotFound)
}
