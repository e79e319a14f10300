package chatagents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddAndListTasks(t *testing.T) {
	store := NewTaskStore()
	add := AddTaskDescriptor(store)
	list := ListTasksDescriptor(store)

	_, err := add.Call(context.Background(), json.RawMessage(`{"title":"write report"}`))
	require.NoError(t, err)
	_, err = add.Call(context.Background(), json.RawMessage(`{"title":"review PR","due_at":"2026-08-01T10:00:00Z"}`))
	require.NoError(t, err)

	out, err := list.Call(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Len(t, out.([]Task), 2)
}

func TestAddTaskRequiresTitle(t *testing.T) {
	add := AddTaskDescriptor(NewTaskStore())
	_, err := add.Call(context.Background(), json.RawMessage(`{"title":""}`))
	require.Error(t, err)
}

func TestAddTaskRejectsInvalidDueAt(t *testing.T) {
	add := AddTaskDescriptor(NewTaskStore())
	_, err := add.Call(context.Background(), json.RawMessage(`{"title":"x","due_at":"not-a-date"}`))
	require.Error(t, err)
}
