package chatagents

import (
	"time"

	"github.com/walterfan/agentcore/internal/model"
	"github.com/walterfan/agentcore/internal/node"
	"github.com/walterfan/agentcore/internal/router"
	"github.com/walterfan/agentcore/internal/telemetry"
	"github.com/walterfan/agentcore/internal/tools"
)

// LearningSystemPrompt is the learning sub-agent's system prompt,
// grounded on original_source's sub_agents.yaml "learning_agent" entry:
// scope limited to English/tech learning, articles, Q&A, and saved
// learning records.
const LearningSystemPrompt = "You are the learning sub-agent of a personal secretary. " +
	"You help the user learn English words and sentences, tech topics, and web articles; " +
	"answer questions and help plan ideas; and save or list learning records on explicit request. " +
	"Only use save_learning when the user explicitly asks to save or remember something."

// ProductivitySystemPrompt is the productivity sub-agent's system
// prompt (this module's addition; see the Task doc in productivity.go).
const ProductivitySystemPrompt = "You are the productivity sub-agent of a personal secretary. " +
	"You help the user track todo items and reminders: add tasks with optional due dates, " +
	"and list pending or completed tasks."

// UtilitySystemPrompt is the utility sub-agent's system prompt, grounded
// on original_source's sub_agents.yaml "utility_agent" entry: quick-info
// lookups only, no learning or task persistence.
const UtilitySystemPrompt = "You are the utility sub-agent of a personal secretary. " +
	"You answer quick-information requests: math calculations, the current date and time, " +
	"and city weather lookups. You hold no conversation state across requests."

// Stores bundles the process-local persistence the learning and
// productivity sub-agents need; utility's tools are stateless.
type Stores struct {
	Learning *LearningStore
	Tasks    *TaskStore
}

// NewStores builds empty, process-local stores for one orchestrator
// instance.
func NewStores() *Stores {
	return &Stores{Learning: NewLearningStore(), Tasks: NewTaskStore()}
}

// NewLearningNode builds the learning sub-agent node.
func NewLearningNode(client model.Client, stores *Stores, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*node.Node, error) {
	reg, err := tools.NewRegistry(
		SaveLearningDescriptor(stores.Learning),
		ListLearningDescriptor(stores.Learning),
		LearnArticleDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	return node.New(router.DomainLearning, LearningSystemPrompt, reg, client, sink, stepBudget, callTimeout)
}

// NewProductivityNode builds the productivity sub-agent node.
func NewProductivityNode(client model.Client, stores *Stores, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*node.Node, error) {
	reg, err := tools.NewRegistry(
		AddTaskDescriptor(stores.Tasks),
		ListTasksDescriptor(stores.Tasks),
	)
	if err != nil {
		return nil, err
	}
	return node.New(router.DomainProductivity, ProductivitySystemPrompt, reg, client, sink, stepBudget, callTimeout)
}

// NewUtilityNode builds the utility sub-agent node.
func NewUtilityNode(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (*node.Node, error) {
	reg, err := tools.NewRegistry(
		CalculateDescriptor(),
		GetDatetimeDescriptor(),
		GetWeatherDescriptor(),
	)
	if err != nil {
		return nil, err
	}
	return node.New(router.DomainUtility, UtilitySystemPrompt, reg, client, sink, stepBudget, callTimeout)
}

// Build constructs all three chat sub-agent nodes sharing one model
// client, telemetry sink, and store set, keyed by the node name the chat
// router (internal/router.ChatRouter) routes to.
func Build(client model.Client, sink *telemetry.Sink, stepBudget int, callTimeout time.Duration) (map[string]*node.Node, *Stores, error) {
	stores := NewStores()

	learning, err := NewLearningNode(client, stores, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, nil, err
	}
	productivity, err := NewProductivityNode(client, stores, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, nil, err
	}
	utility, err := NewUtilityNode(client, sink, stepBudget, callTimeout)
	if err != nil {
		return nil, nil, err
	}

	return map[string]*node.Node{
		router.DomainLearning:    learning,
		router.DomainProductivity: productivity,
		router.DomainUtility:     utility,
	}, stores, nil
}
