// Package router implements the Supervisor Router: the component that
// decides the next node name (or state.EndSentinel) from the current
// State. Chat and Paper workflows each get their own strategy; both
// satisfy the same Router interface so internal/executor never
// branches on workflow kind itself.
package router

import (
	"context"

	"github.com/walterfan/agentcore/internal/state"
)

// Router decides the next node to invoke, or state.EndSentinel to
// terminate the task.
type Router interface {
	Next(ctx context.Context, s *state.State) (string, error)
}
