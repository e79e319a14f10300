// Package state implements the State Machine: the mutable record
// associated with a Task, the Delta a node returns, and the merge rule
// the executor applies. Nodes only ever see an immutable snapshot (via
// Snapshot) and return a Delta; only internal/executor calls Merge.
package state

import (
	"time"

	"github.com/google/uuid"
)

// WorkflowKind selects the router's rule set and node registry.
type WorkflowKind string

const (
	WorkflowChat  WorkflowKind = "chat"
	WorkflowPaper WorkflowKind = "paper"
)

// TaskStatus is the terminal status lifecycle of a Task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// EndSentinel is the routing target that terminates the executor loop.
const EndSentinel = "END"

// Task identifies one orchestration run.
type Task struct {
	ID            string
	Subject       string
	Workflow      WorkflowKind
	CreatedAt     time.Time
	Status        TaskStatus
	CorrelationID string
}

// NewTask allocates a Task with a fresh id and correlation id.
func NewTask(subject string, workflow WorkflowKind) *Task {
	return &Task{
		ID:            uuid.NewString(),
		Subject:       subject,
		Workflow:      workflow,
		CreatedAt:     time.Now().UTC(),
		Status:        TaskRunning,
		CorrelationID: uuid.NewString(),
	}
}

// Role tags a message entry's speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleSystem    Role = "system"
)

// ToolCallDescriptor records a tool call an assistant message requested,
// so a later tool message can be matched back to it by ID: every tool
// message carries a tool_call_id matching a prior assistant tool-call
// descriptor.
type ToolCallDescriptor struct {
	ID   string
	Name string
	Args any
}

// MessageEntry is one append-only entry in State.Messages.
type MessageEntry struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCallDescriptor // set on assistant entries that call tools
	ToolCallID string               // set on tool entries, matches a prior ToolCallDescriptor.ID
	IsError    bool                 // set on tool entries whose content is an error payload
}

// ErrorEntry is one per-step error descriptor appended to State.Errors.
type ErrorEntry struct {
	Step      string
	Kind      string
	Message   string
	Retryable bool
	At        time.Time
}

// State is the mutable record associated with a Task. It is
// task-private: only the executor mutates it, and only between node
// invocations, so no locking is required.
type State struct {
	Messages      []MessageEntry
	Artifacts     map[string]any
	CurrentStep   string
	NextAgent     string
	RevisionRound int
	MaxRevisions  int
	Errors        []ErrorEntry
}

// New builds an empty State ready for the first router decision.
func New(maxRevisions int) *State {
	return &State{
		CurrentStep:  "start",
		Artifacts:    make(map[string]any),
		MaxRevisions: maxRevisions,
	}
}

// Snapshot returns an immutable deep-enough copy for a node to read. The
// node never mutates the original; it returns a Delta instead.
func (s *State) Snapshot() State {
	cp := *s
	cp.Messages = append([]MessageEntry(nil), s.Messages...)
	cp.Artifacts = make(map[string]any, len(s.Artifacts))
	for k, v := range s.Artifacts {
		cp.Artifacts[k] = v
	}
	cp.Errors = append([]ErrorEntry(nil), s.Errors...)
	return cp
}

// Delta is what a node returns from one invocation: the messages it
// produced, any artifacts it wrote, its routing suggestion, and any error
// it wants recorded. The executor is the only caller of Merge.
type Delta struct {
	NewMessages  []MessageEntry
	Artifacts    map[string]any
	NextAgent    string // empty means "let the router decide"
	Error        *ErrorEntry
	CurrentStep  string // the node name; executor sets State.CurrentStep to this
}

// Merge applies a node's Delta to the live State: messages append,
// artifacts overwrite only the keys present in the delta, current_step
// is set to the node that ran, next_agent is set from the delta (or
// left for the router), and errors append. RevisionRound is never
// touched here — only internal/revision may change it.
func (s *State) Merge(d Delta) {
	s.Messages = append(s.Messages, d.NewMessages...)
	for k, v := range d.Artifacts {
		s.Artifacts[k] = v
	}
	if d.CurrentStep != "" {
		s.CurrentStep = d.CurrentStep
	}
	s.NextAgent = d.NextAgent
	if d.Error != nil {
		s.Errors = append(s.Errors, *d.Error)
	}
}

// HasArtifact reports whether a named artifact is present and non-empty,
// used by the paper router's idempotent-resume skip rule.
func (s *State) HasArtifact(name string) bool {
	v, ok := s.Artifacts[name]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
