// Package workflow composes the core collaborators — routers, node
// maps, the store, and the telemetry sink — into the two runnable
// graphs: the chat workflow and the paper workflow. It is the one
// place both graphs are assembled; internal/executor itself stays
// workflow-agnostic.
package workflow

import (
	"time"

	"github.com/walterfan/agentcore/internal/hooks"
	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/store"
	"github.com/walterfan/agentcore/internal/telemetry"
)

// Config bundles the collaborators both workflows share. Fields left
// zero take the package defaults each Build function documents.
type Config struct {
	Client model.Client
	Store  store.Store
	Sink   *telemetry.Sink
	Bus    *hooks.Bus

	// StepBudget and MaxConsecutiveFailures feed internal/executor.New
	// directly; <= 0 uses its own defaults.
	StepBudget             int
	MaxConsecutiveFailures int

	// CallTimeout bounds each LLM round-trip of a node, retries included
	// (internal/node.New's callTimeout); tool calls are not bounded by
	// it. <= 0 uses internal/node's default.
	CallTimeout time.Duration

	// NodeStepBudget bounds a single node's internal ReAct loop
	// (internal/node.New's stepBudget). <= 0 uses internal/node's
	// default.
	NodeStepBudget int

	// MinReferences overrides the paper workflow's literature retry
	// threshold (internal/router.NewPaperRouter). <= 0 uses
	// internal/router.DefaultMinReferences. Unused by the chat workflow.
	MinReferences int

	// MaxRevisions bounds the paper workflow's revision loop
	// (state.New's maxRevisions / internal/revision.Check). <= 0 uses
	// DefaultMaxRevisions. Unused by the chat workflow.
	MaxRevisions int
}

// DefaultMaxRevisions is the paper workflow's default revision-round
// ceiling.
const DefaultMaxRevisions = 3

func (c Config) maxRevisions() int {
	if c.MaxRevisions <= 0 {
		return DefaultMaxRevisions
	}
	return c.MaxRevisions
}
