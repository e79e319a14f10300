package workflow

import (
	"github.com/walterfan/agentcore/chatagents"
	"github.com/walterfan/agentcore/internal/executor"
	"github.com/walterfan/agentcore/internal/router"
	"github.com/walterfan/agentcore/internal/state"
)

// Chat bundles the assembled chat workflow graph: the executor ready to
// drive it, and the sub-agent stores a caller may want to inspect
// directly (e.g. an admin endpoint listing saved learnings or tasks).
type Chat struct {
	Executor *executor.Executor
	Stores   *chatagents.Stores
}

// BuildChat wires the chat workflow: a ChatRouter classifying the
// latest user message into one of three domains, and the three
// sub-agent nodes chatagents.Build constructs, keyed so the router's
// domain names line up with the executor's node map.
func BuildChat(cfg Config) (*Chat, error) {
	nodes, stores, err := chatagents.Build(cfg.Client, cfg.Sink, cfg.NodeStepBudget, cfg.CallTimeout)
	if err != nil {
		return nil, err
	}

	execNodes := make(map[string]executor.Node, len(nodes))
	for name, n := range nodes {
		execNodes[name] = n
	}

	r := router.NewChatRouter(cfg.Client)
	e := executor.New(r, execNodes, cfg.Store, cfg.Sink, cfg.Bus, cfg.StepBudget, cfg.MaxConsecutiveFailures)

	return &Chat{Executor: e, Stores: stores}, nil
}

// NewTask allocates a fresh chat task and its initial state seeded with
// the user's opening message: ChatRouter.Next expects at least one user
// message in State.Messages before its first call.
func NewTask(subject, userMessage string) (*state.Task, *state.State) {
	task := state.NewTask(subject, state.WorkflowChat)
	s := state.New(0)
	s.Messages = append(s.Messages, state.MessageEntry{Role: state.RoleUser, Content: userMessage})
	return task, s
}
