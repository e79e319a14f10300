package a2a

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRequestSetsProtocolAndID(t *testing.T) {
	t.Parallel()

	req := NewRequest("supervisor", "utility", "route_request", map[string]any{"x": 1}, "corr-1")

	require.Equal(t, ProtocolVersion, req.Protocol)
	require.NotEmpty(t, req.ID)
	require.Equal(t, "corr-1", req.CorrelationID)
	require.Equal(t, "supervisor", req.Sender)
	require.Equal(t, "utility", req.Receiver)
	require.Empty(t, req.Status)
}

func TestNewResponseSwapsSenderReceiver(t *testing.T) {
	t.Parallel()

	req := NewRequest("supervisor", "utility", "route_request", nil, "corr-1")
	resp := NewResponse(req, StatusOK, map[string]any{"ok": true}, nil, Metrics{LatencyMS: 12})

	require.Equal(t, "utility", resp.Sender)
	require.Equal(t, "supervisor", resp.Receiver)
	require.Equal(t, req.CorrelationID, resp.CorrelationID)
	require.Equal(t, req.Intent, resp.Intent)
	require.Equal(t, StatusOK, resp.Status)
	require.Nil(t, resp.Error)
	require.NotEqual(t, req.ID, resp.ID)
}

func TestUnknownErrorNotRetryable(t *testing.T) {
	t.Parallel()

	err := Unknown("missing artifact after stage completion")
	require.Equal(t, ErrUnknown, err.Kind)
	require.False(t, err.Retryable)
}
