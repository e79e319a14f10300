package workflow

import (
	"github.com/walterfan/agentcore/internal/executor"
	"github.com/walterfan/agentcore/internal/router"
	"github.com/walterfan/agentcore/internal/state"
	"github.com/walterfan/agentcore/paperagents"
)

// BuildPaper wires the paper workflow: a PaperRouter driving the fixed
// literature -> stats -> writer -> compliance progression (with a
// bounded revision loop back to writer), and the four stage nodes
// paperagents.Build constructs. RequiredArtifacts is set from
// paperagents.RequiredArtifacts() so the executor enforces the
// invariant that a stage completing without error must have left its
// artifact behind.
func BuildPaper(cfg Config) (*executor.Executor, error) {
	nodes, err := paperagents.Build(cfg.Client, cfg.Sink, cfg.NodeStepBudget, cfg.CallTimeout)
	if err != nil {
		return nil, err
	}

	execNodes := make(map[string]executor.Node, len(nodes))
	for name, n := range nodes {
		execNodes[name] = n
	}

	r := router.NewPaperRouter(cfg.MinReferences)
	e := executor.New(r, execNodes, cfg.Store, cfg.Sink, cfg.Bus, cfg.StepBudget, cfg.MaxConsecutiveFailures)
	e.RequiredArtifacts = paperagents.RequiredArtifacts()

	return e, nil
}

// NewPaperTask allocates a fresh paper task and its initial state seeded
// with the research question as the opening user message, and
// MaxRevisions set from cfg (internal/revision.Check's ceiling).
func NewPaperTask(cfg Config, subject, researchQuestion string) (*state.Task, *state.State) {
	task := state.NewTask(subject, state.WorkflowPaper)
	s := state.New(cfg.maxRevisions())
	s.Messages = append(s.Messages, state.MessageEntry{Role: state.RoleUser, Content: researchQuestion})
	return task, s
}
