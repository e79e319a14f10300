package chatagents

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/walterfan/agentcore/internal/tools"
)

// Task is one todo/reminder item. The productivity sub-agent is this
// module's addition (see SPEC_FULL.md's "Supplemented Features"): the
// original secretary service names three chat domains but the retrieved
// pack only details learning and utility, so productivity fills the
// third router destination with a minimal todo/reminder tool pair in the
// same in-memory-store idiom as LearningStore.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	DueAt     *time.Time `json:"due_at,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"created_at"`
}

// TaskStore persists todo items for one user/session scope.
type TaskStore struct {
	mu    sync.Mutex
	tasks []Task
}

// NewTaskStore builds an empty, process-local task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{}
}

func (s *TaskStore) add(title string, dueAt *time.Time) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Task{ID: uuid.NewString(), Title: title, DueAt: dueAt, CreatedAt: time.Now().UTC()}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *TaskStore) list(includeDone bool) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if includeDone || !t.Done {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type addTaskArgs struct {
	Title string `json:"title"`
	DueAt string `json:"due_at"`
}

var addTaskSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":  map[string]any{"type": "string", "description": "short task or reminder description"},
		"due_at": map[string]any{"type": "string", "description": "optional RFC3339 due timestamp"},
	},
	"required": []any{"title"},
}

// AddTaskDescriptor builds the add_task tool bound to store.
func AddTaskDescriptor(store *TaskStore) tools.Descriptor {
	return tools.Descriptor{
		Name:        "add_task",
		Description: "Add a todo or reminder item. Optionally set a due date/time.",
		Schema:      addTaskSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a addTaskArgs
			if err := json.Unmarshal(args, &a); err != nil {
				return nil, fmt.Errorf("add_task: %w", err)
			}
			if a.Title == "" {
				return nil, fmt.Errorf("add_task: title is required")
			}
			var dueAt *time.Time
			if a.DueAt != "" {
				t, err := time.Parse(time.RFC3339, a.DueAt)
				if err != nil {
					return nil, fmt.Errorf("add_task: invalid due_at: %w", err)
				}
				dueAt = &t
			}
			return store.add(a.Title, dueAt), nil
		},
	}
}

type listTasksArgs struct {
	IncludeDone bool `json:"include_done"`
}

var listTasksSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"include_done": map[string]any{"type": "boolean", "description": "include already-completed tasks"},
	},
}

// ListTasksDescriptor builds the list_tasks tool bound to store.
func ListTasksDescriptor(store *TaskStore) tools.Descriptor {
	return tools.Descriptor{
		Name:        "list_tasks",
		Description: "List the user's todo/reminder items, by default only the pending ones.",
		Schema:      listTasksSchema,
		Call: func(_ context.Context, args json.RawMessage) (any, error) {
			var a listTasksArgs
			if len(args) > 0 {
				if err := json.Unmarshal(args, &a); err != nil {
					return nil, fmt.Errorf("list_tasks: %w", err)
				}
			}
			return store.list(a.IncludeDone), nil
		},
	}
}
