// Package stream implements the Stream Adapter: it converts executor
// lifecycle events into an ordered, typed chunk sequence with
// exactly one start chunk, one done chunk (always last), and any number
// of token/data/error chunks in between, all totally ordered within one
// task.
package stream

import (
	"context"
	"sync"
)

// ChunkKind is one of the four (plus terminal) stream event kinds (spec
// §4.9).
type ChunkKind string

const (
	ChunkStart ChunkKind = "start"
	ChunkToken ChunkKind = "token"
	ChunkData  ChunkKind = "data"
	ChunkError ChunkKind = "error"
	ChunkDone  ChunkKind = "done"
)

// Chunk is one record emitted on a task's stream.
type Chunk struct {
	Type ChunkKind `json:"type"`

	TaskID        string `json:"task_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`

	// token
	Text string `json:"text,omitempty"`

	// data
	Node      string         `json:"node,omitempty"`
	Status    string         `json:"status,omitempty"`
	Artifacts map[string]any `json:"artifacts,omitempty"`

	// error
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`

	// done
	FinalStatus string `json:"final_status,omitempty"`
}

// DefaultQueueDepth bounds the channel buffer per task: no buffering
// beyond a small bounded queue, default 16 events. A slow consumer
// blocks the producing task once the queue fills, which is the
// intended backpressure.
const DefaultQueueDepth = 16

// Adapter is a single task's ordered chunk sequence, backed by a bounded
// channel. One Adapter is constructed per task stream, and its emit
// methods are called only from the task's own executor goroutine (one
// task is one sequential flow) — never concurrently with themselves,
// so Done closing the channel races with nothing.
type Adapter struct {
	ch chan Chunk

	mu   sync.Mutex
	done bool
}

// New constructs an Adapter with the default (or given) queue depth.
func New(queueDepth int) *Adapter {
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}
	return &Adapter{ch: make(chan Chunk, queueDepth)}
}

// Chunks returns the read side of the stream for consumers to range over.
func (a *Adapter) Chunks() <-chan Chunk {
	return a.ch
}

// Start emits the single start chunk. Must be called before any other
// emit method.
func (a *Adapter) Start(ctx context.Context, taskID, correlationID string) {
	a.emit(ctx, Chunk{Type: ChunkStart, TaskID: taskID, CorrelationID: correlationID})
}

// Token emits one partial LLM output fragment. Ordering within a node
// is the caller's responsibility; this adapter preserves send order.
func (a *Adapter) Token(ctx context.Context, text string) {
	a.emit(ctx, Chunk{Type: ChunkToken, Text: text})
}

// Data emits a node-completion summary.
func (a *Adapter) Data(ctx context.Context, node, status string, artifacts map[string]any) {
	a.emit(ctx, Chunk{Type: ChunkData, Node: node, Status: status, Artifacts: artifacts})
}

// Error emits an error chunk. It does not close the stream; Done must
// still be called exactly once.
func (a *Adapter) Error(ctx context.Context, kind, message string) {
	a.emit(ctx, Chunk{Type: ChunkError, Kind: kind, Message: message})
}

// Done emits the single terminal chunk and closes the channel. Calling it
// more than once is a no-op.
func (a *Adapter) Done(ctx context.Context, finalStatus string) {
	a.mu.Lock()
	if a.done {
		a.mu.Unlock()
		return
	}
	a.done = true
	a.mu.Unlock()

	select {
	case a.ch <- Chunk{Type: ChunkDone, FinalStatus: finalStatus}:
	case <-ctx.Done():
	}
	close(a.ch)
}

// emit blocks until the chunk is queued, the context is cancelled, or the
// stream is already done (in which case the chunk is dropped — nothing
// may follow Done).
func (a *Adapter) emit(ctx context.Context, c Chunk) {
	a.mu.Lock()
	if a.done {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	select {
	case a.ch <- c:
	case <-ctx.Done():
	}
}
