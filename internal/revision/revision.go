// Package revision implements the Revision Controller: a function of
// State alone that decides whether the paper workflow loops back to the
// writer node for another pass, and records that decision in the State
// it is given. It is the only caller allowed to change
// State.RevisionRound.
package revision

import (
	"fmt"
	"strings"

	"github.com/walterfan/agentcore/internal/state"
)

// Decision is the outcome of one revision check.
type Decision struct {
	// Revise is true when another writer pass is needed.
	Revise bool
	// NextAgent is the node to route to when Revise is true (always
	// "writer"); empty otherwise, leaving the router's own decision in
	// place.
	NextAgent string
}

// Check examines s.Artifacts["compliance_report"] and s.RevisionRound
// against s.MaxRevisions. When another pass is warranted it increments
// RevisionRound and appends a synthesised user message summarising the
// failed checklist items, mutating s in place; callers must not call
// Check more than once per compliance result.
func Check(s *state.State) Decision {
	report, ok := s.Artifacts["compliance_report"].(map[string]any)
	if !ok {
		return Decision{}
	}
	needsRevision, _ := report["needs_revision"].(bool)
	if !needsRevision {
		return Decision{}
	}
	if s.RevisionRound >= s.MaxRevisions {
		return Decision{}
	}

	s.RevisionRound++
	s.Messages = append(s.Messages, state.MessageEntry{
		Role:    state.RoleUser,
		Content: summariseFailedItems(report),
	})
	// The stale report must not short-circuit the next compliance pass:
	// PaperRouter's staged progression treats a present compliance_report
	// as "stage done" and would route straight to END once the writer
	// finishes its revision pass, skipping re-validation entirely.
	delete(s.Artifacts, "compliance_report")
	return Decision{Revise: true, NextAgent: "writer"}
}

// summariseFailedItems builds the synthesised steering message from a
// compliance report's failed_items list, falling back to a generic
// prompt when the report carries no itemised detail.
func summariseFailedItems(report map[string]any) string {
	items, _ := report["failed_items"].([]any)
	if len(items) == 0 {
		return "The compliance check requires revisions. Please review the manuscript and address any outstanding checklist items."
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %v", it))
	}
	return "The compliance check flagged the following items for revision:\n" + strings.Join(lines, "\n")
}
