// Package store defines the A2A persistence collaborator: a durable
// write of every A2A message plus a query used by admin/inspection
// tooling, never by the core executor loop itself.
package store

import (
	"context"

	"github.com/walterfan/agentcore/internal/a2a"
)

// Store persists A2A messages per task. Write must be durable on a nil
// return; query ordering is by timestamp ascending.
type Store interface {
	Write(ctx context.Context, taskID string, msg *a2a.Message) error
	ListByTask(ctx context.Context, taskID string) ([]*a2a.Message, error)
}
