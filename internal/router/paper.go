package router

import (
	"context"

	"github.com/walterfan/agentcore/internal/state"
)

// DefaultMinReferences is the minimum reference count the literature
// stage must produce before the router advances past it.
const DefaultMinReferences = 10

// Paper stage node names, in their fixed progression order.
const (
	StageLiterature = "literature"
	StageStats      = "stats"
	StageWriter     = "writer"
	StageCompliance = "compliance"
)

// PaperRouter implements the paper workflow's fixed staged progression:
// literature -> stats -> writer -> compliance, skipping any stage whose
// primary artifact is already present (idempotent resume),
// and retrying literature once if it produced too few references. The
// revision loop itself is driven by internal/revision, which runs before
// the executor asks this router again and, on a revise decision, leaves
// state.State.NextAgent set to "writer"; Next honors that override ahead
// of its own stage-progression checks and clears it once consumed, so a
// revision round forces exactly one extra writer pass instead of the
// compliance_report artifact short-circuiting straight to END.
//
// One PaperRouter is constructed per task: the literature retry flag is
// task-local state, not shared across tasks.
type PaperRouter struct {
	MinReferences int

	literatureRetried bool
}

// NewPaperRouter constructs a PaperRouter. minReferences <= 0 uses
// DefaultMinReferences.
func NewPaperRouter(minReferences int) *PaperRouter {
	if minReferences <= 0 {
		minReferences = DefaultMinReferences
	}
	return &PaperRouter{MinReferences: minReferences}
}

// Next implements Router for the paper workflow.
func (r *PaperRouter) Next(ctx context.Context, s *state.State) (string, error) {
	if s.NextAgent != "" {
		next := s.NextAgent
		s.NextAgent = ""
		return next, nil
	}

	if !s.HasArtifact("references") {
		return StageLiterature, nil
	}

	if s.CurrentStep == StageLiterature && !r.literatureRetried {
		if refs, ok := s.Artifacts["references"].([]any); ok && len(refs) < r.MinReferences {
			r.literatureRetried = true
			return StageLiterature, nil
		}
	}

	if !s.HasArtifact("stats_report") {
		return StageStats, nil
	}
	if !s.HasArtifact("manuscript") {
		return StageWriter, nil
	}
	if !s.HasArtifact("compliance_report") {
		return StageCompliance, nil
	}

	return state.EndSentinel, nil
}
