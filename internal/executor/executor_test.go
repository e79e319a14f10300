package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/internal/store/memory"
	"github.com/walterfan/agentcore/internal/telemetry"
)

// scriptedNode returns a fixed delta/response pair, ignoring its inputs,
// so the executor's driving logic can be tested without a real node.
type scriptedNode struct {
	delta state.Delta
	resp  func(req *a2a.Message) *a2a.Message
}

func (n *scriptedNode) Run(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message) {
	return n.delta, n.resp(req)
}

// fixedRouter replays a scripted sequence of routing decisions.
type fixedRouter struct {
	sequence []string
	i        int
}

func (r *fixedRouter) Next(ctx context.Context, s *state.State) (string, error) {
	if r.i >= len(r.sequence) {
		return state.EndSentinel, nil
	}
	next := r.sequence[r.i]
	r.i++
	return next, nil
}

func testSink() *telemetry.Sink {
	return telemetry.NewSink(telemetry.NewNoopLogger(), telemetry.NewNoopMetrics(), telemetry.NewNoopTracer(), false)
}

func okResp(req *a2a.Message) *a2a.Message {
	return a2a.NewResponse(req, a2a.StatusOK, "done", nil, a2a.Metrics{})
}

func TestRunCompletesWhenRouterReturnsEnd(t *testing.T) {
	t.Parallel()

	task := state.NewTask("hi", state.WorkflowChat)
	s := state.New(0)
	e := New(&fixedRouter{sequence: []string{"utility"}}, map[string]Node{
		"utility": &scriptedNode{delta: state.Delta{CurrentStep: "utility"}, resp: okResp},
	}, memory.New(), testSink(), nil, 0, 0)

	final, err := e.Run(context.Background(), task, s)
	require.NoError(t, err)
	require.Equal(t, state.TaskCompleted, task.Status)
	require.Equal(t, "utility", final.CurrentStep)
}

func TestRunFailsWhenStepBudgetExhausted(t *testing.T) {
	t.Parallel()

	task := state.NewTask("hi", state.WorkflowChat)
	s := state.New(0)
	e := New(&fixedRouter{sequence: []string{"utility", "utility", "utility"}}, map[string]Node{
		"utility": &scriptedNode{delta: state.Delta{}, resp: okResp},
	}, memory.New(), testSink(), nil, 2, 0)

	_, err := e.Run(context.Background(), task, s)
	require.Error(t, err)
	require.Equal(t, state.TaskFailed, task.Status)
}

func TestRunFailsOnNonRetryableNodeError(t *testing.T) {
	t.Parallel()

	task := state.NewTask("hi", state.WorkflowChat)
	s := state.New(0)
	errResp := func(req *a2a.Message) *a2a.Message {
		return a2a.NewResponse(req, a2a.StatusError, nil, &a2a.Error{Kind: a2a.ErrTool, Message: "boom", Retryable: false}, a2a.Metrics{})
	}
	e := New(&fixedRouter{sequence: []string{"utility"}}, map[string]Node{
		"utility": &scriptedNode{delta: state.Delta{}, resp: errResp},
	}, memory.New(), testSink(), nil, 0, 0)

	_, err := e.Run(context.Background(), task, s)
	require.Error(t, err)
	require.Equal(t, state.TaskFailed, task.Status)
}

func TestRunFailsWhenRequiredArtifactMissing(t *testing.T) {
	t.Parallel()

	task := state.NewTask("paper", state.WorkflowPaper)
	s := state.New(3)
	e := New(&fixedRouter{sequence: []string{"literature"}}, map[string]Node{
		"literature": &scriptedNode{delta: state.Delta{CurrentStep: "literature"}, resp: okResp},
	}, memory.New(), testSink(), nil, 0, 0)
	e.RequiredArtifacts = map[string]string{"literature": "references"}

	_, err := e.Run(context.Background(), task, s)
	require.Error(t, err)
	require.Equal(t, state.TaskFailed, task.Status)
}

func TestRunAppliesRevisionLoopForPaperWorkflow(t *testing.T) {
	t.Parallel()

	task := state.NewTask("paper", state.WorkflowPaper)
	s := state.New(3)

	calls := 0
	writer := &scriptedNode{
		resp: okResp,
		delta: state.Delta{
			CurrentStep: "writer",
			Artifacts:   map[string]any{"manuscript": "draft"},
		},
	}
	complianceCallCount := 0
	compliance := &nodeFunc{fn: func(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message) {
		complianceCallCount++
		needsRevision := complianceCallCount == 1
		return state.Delta{
			CurrentStep: "compliance",
			Artifacts:   map[string]any{"compliance_report": map[string]any{"needs_revision": needsRevision}},
		}, okResp(req)
	}}
	_ = calls

	r := &fixedRouter{sequence: []string{"writer", "compliance", "writer", "compliance"}}
	e := New(r, map[string]Node{"writer": writer, "compliance": compliance}, memory.New(), testSink(), nil, 10, 0)

	final, err := e.Run(context.Background(), task, s)
	require.NoError(t, err)
	require.Equal(t, state.TaskCompleted, task.Status)
	require.Equal(t, 1, final.RevisionRound)
	require.Equal(t, 2, complianceCallCount)
}

type nodeFunc struct {
	fn func(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message)
}

func (n *nodeFunc) Run(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message) {
	return n.fn(ctx, snapshot, req)
}
