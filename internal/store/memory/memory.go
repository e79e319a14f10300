// Package memory provides an in-memory implementation of store.Store,
// grounded on the runtime's runlog in-memory store. It is intended for
// tests and local development; it is not durable.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/store"
)

// Store implements store.Store in memory, ordered by append order (which
// matches timestamp order since writes happen sequentially per task).
type Store struct {
	mu       sync.Mutex
	messages map[string][]*a2a.Message
}

// New returns a new in-memory A2A message store.
func New() *Store {
	return &Store{messages: make(map[string][]*a2a.Message)}
}

var _ store.Store = (*Store)(nil)

// Write implements store.Store.
func (s *Store) Write(_ context.Context, taskID string, msg *a2a.Message) error {
	if taskID == "" {
		return fmt.Errorf("memory store: task_id is required")
	}
	if msg == nil {
		return fmt.Errorf("memory store: message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *msg
	s.messages[taskID] = append(s.messages[taskID], &cp)
	return nil
}

// ListByTask implements store.Store.
func (s *Store) ListByTask(_ context.Context, taskID string) ([]*a2a.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.messages[taskID]
	out := make([]*a2a.Message, len(all))
	copy(out, all)
	return out, nil
}
