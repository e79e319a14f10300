// Package executor implements the Graph Executor: the central
// Router -> Node -> Router driver loop. It is deliberately a plain
// imperative loop, never a coroutine/workflow framework, so
// cancellation, retries, and step budgets are ordinary Go control
// flow.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/hooks"
	"github.com/walterfan/agentcore/internal/retry"
	"github.com/walterfan/agentcore/internal/revision"
	"github.com/walterfan/agentcore/internal/router"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/internal/store"
	"github.com/walterfan/agentcore/internal/stream"
	"github.com/walterfan/agentcore/internal/telemetry"
)

// DefaultStepBudget bounds total node invocations per task.
const DefaultStepBudget = 40

// DefaultMaxConsecutiveFailures bounds how many failing nodes in a row
// the executor tolerates before giving up.
const DefaultMaxConsecutiveFailures = 3

// Node is the subset of internal/node.Node the executor depends on,
// expressed as an interface so the executor package never imports
// internal/node (keeping the dependency direction node -> executor-free).
type Node interface {
	Run(ctx context.Context, snapshot state.State, req *a2a.Message) (state.Delta, *a2a.Message)
}

// Executor drives one workflow's Router -> Node -> Router loop.
type Executor struct {
	Router         router.Router
	Nodes          map[string]Node
	Store          store.Store
	Sink           *telemetry.Sink
	Bus            *hooks.Bus
	StepBudget     int
	MaxConsecutive int

	// RequiredArtifacts maps a node name to the artifact key it must
	// leave behind on a non-error completion: if a stage's artifact is
	// missing after the stage executed and status was not error, this is
	// an invariant violation and the task fails with UNKNOWN. Artifact
	// names are otherwise opaque to the executor; this map is the one
	// place a caller tells it which name to check per node, typically
	// only set for the paper workflow's fixed stages.
	RequiredArtifacts map[string]string
}

// New constructs an Executor. stepBudget <= 0 uses DefaultStepBudget;
// maxConsecutiveFailures <= 0 uses DefaultMaxConsecutiveFailures.
func New(r router.Router, nodes map[string]Node, st store.Store, sink *telemetry.Sink, bus *hooks.Bus, stepBudget, maxConsecutiveFailures int) *Executor {
	if stepBudget <= 0 {
		stepBudget = DefaultStepBudget
	}
	if maxConsecutiveFailures <= 0 {
		maxConsecutiveFailures = DefaultMaxConsecutiveFailures
	}
	return &Executor{
		Router:         r,
		Nodes:          nodes,
		Store:          st,
		Sink:           sink,
		Bus:            bus,
		StepBudget:     stepBudget,
		MaxConsecutive: maxConsecutiveFailures,
	}
}

// Run executes task synchronously to completion, returning only once
// the task reaches a terminal state.
func (e *Executor) Run(ctx context.Context, task *state.Task, s *state.State) (*state.State, error) {
	return e.drive(ctx, task, s, nil)
}

// Stream executes task, emitting ordered chunks to adapter as it
// progresses via the Stream Adapter (internal/stream). Stream blocks
// until the task reaches a terminal state; callers consume
// adapter.Chunks() concurrently.
func (e *Executor) Stream(ctx context.Context, task *state.Task, s *state.State, adapter *stream.Adapter) (*state.State, error) {
	adapter.Start(ctx, task.ID, task.CorrelationID)
	final, err := e.drive(ctx, task, s, adapter)
	adapter.Done(ctx, string(task.Status))
	return final, err
}

// drive runs the Router -> Node -> Router loop; adapter may be nil (Run
// callers don't need a stream).
func (e *Executor) drive(ctx context.Context, task *state.Task, s *state.State, adapter *stream.Adapter) (*state.State, error) {
	if e.Sink != nil {
		ctx = e.Sink.NewTrace(ctx, task.ID)
	}
	e.publish(ctx, hooks.Event{Type: hooks.EventTaskCreated, TaskID: task.ID, CorrelationID: task.CorrelationID})

	consecutiveFailures := 0
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			task.Status = state.TaskCancelled
			break
		}

		next, err := e.Router.Next(ctx, s)
		if err != nil {
			task.Status = state.TaskFailed
			s.Errors = append(s.Errors, state.ErrorEntry{Step: s.CurrentStep, Kind: string(a2a.ErrUnknown), Message: err.Error(), At: time.Now().UTC()})
			break
		}
		if next == state.EndSentinel {
			task.Status = state.TaskCompleted
			break
		}
		if step >= e.StepBudget {
			task.Status = state.TaskFailed
			s.Errors = append(s.Errors, state.ErrorEntry{Step: s.CurrentStep, Kind: string(a2a.ErrTimeout), Message: "executor step budget exhausted", At: time.Now().UTC()})
			break
		}

		node, ok := e.Nodes[next]
		if !ok {
			task.Status = state.TaskFailed
			s.Errors = append(s.Errors, state.ErrorEntry{Step: next, Kind: string(a2a.ErrUnknown), Message: fmt.Sprintf("no node registered for %q", next), At: time.Now().UTC()})
			break
		}

		start := time.Now()
		req := a2a.NewRequest("supervisor", next, "route_request", s.Snapshot(), task.CorrelationID)
		e.publish(ctx, hooks.Event{Type: hooks.EventStepStarted, TaskID: task.ID, Node: next})

		delta, resp := node.Run(ctx, s.Snapshot(), req)

		e.persist(ctx, task.ID, resp)
		s.Merge(delta)

		if e.Sink != nil {
			e.Sink.StepDuration(ctx, next, string(resp.Status), time.Since(start))
		}
		if adapter != nil {
			adapter.Data(ctx, next, string(resp.Status), delta.Artifacts)
		}
		e.publish(ctx, hooks.Event{Type: hooks.EventStepComplete, TaskID: task.ID, Node: next, Status: string(resp.Status), Artifacts: delta.Artifacts})

		if resp.Status == a2a.StatusError {
			consecutiveFailures++
			if resp.Error != nil && !resp.Error.Retryable {
				task.Status = state.TaskFailed
				break
			}
			if consecutiveFailures >= e.MaxConsecutive {
				task.Status = state.TaskFailed
				s.Errors = append(s.Errors, state.ErrorEntry{Step: next, Kind: string(a2a.ErrUnknown), Message: "too many consecutive failing nodes", At: time.Now().UTC()})
				break
			}
		} else {
			consecutiveFailures = 0
			if artifactKey, ok := e.RequiredArtifacts[next]; ok && !s.HasArtifact(artifactKey) {
				task.Status = state.TaskFailed
				s.Errors = append(s.Errors, state.ErrorEntry{
					Step:    next,
					Kind:    string(a2a.ErrUnknown),
					Message: fmt.Sprintf("node %q completed without producing required artifact %q", next, artifactKey),
					At:      time.Now().UTC(),
				})
				break
			}
		}

		if task.Workflow == state.WorkflowPaper {
			d := revision.Check(s)
			if e.Sink != nil {
				e.Sink.RevisionRound(ctx, s.RevisionRound)
			}
			if d.Revise {
				s.NextAgent = d.NextAgent
				e.publish(ctx, hooks.Event{Type: hooks.EventRevisionRound, TaskID: task.ID})
				continue
			}
		}
	}

	if e.Sink != nil {
		e.Sink.TaskCompleted(ctx, string(task.Status))
	}
	e.publish(ctx, hooks.Event{Type: hooks.EventTaskCompleted, TaskID: task.ID, Status: string(task.Status)})

	if task.Status == state.TaskFailed {
		return s, fmt.Errorf("executor: task %s failed", task.ID)
	}
	return s, nil
}

// persist writes resp to the store with the "retry twice then suppress"
// policy (retry.PersistencePolicy); a persistence failure is logged but
// non-fatal, and the response is applied to state regardless.
func (e *Executor) persist(ctx context.Context, taskID string, resp *a2a.Message) {
	if e.Store == nil {
		return
	}
	err := retry.Do(ctx, retry.PersistencePolicy, func(error) bool { return true }, func(ctx context.Context) error {
		return e.Store.Write(ctx, taskID, resp)
	})
	if err != nil && e.Sink != nil {
		e.Sink.Logger.Warn(ctx, "a2a persistence failed, suppressing", "task_id", taskID, "error", err)
	}
}

func (e *Executor) publish(ctx context.Context, ev hooks.Event) {
	if e.Bus == nil {
		return
	}
	_ = e.Bus.Publish(ctx, ev)
}
