// Package session defines durable session lifecycle and run metadata
// primitives. A Session is the conversational container a chat task's
// Task.CorrelationID is scoped under; a RunMeta tracks one orchestration
// run (chat or paper task) within that session.
//
// Session lifecycle is explicit: sessions are created and ended
// independently of task lifecycle, so a multi-turn chat can span many
// completed tasks under one session.
package session

import (
	"context"
	"errors"
	"time"
)

type (
	// Session captures durable session lifecycle state.
	//
	// Contract:
	// - Session IDs are stable and caller-provided (typically the chat
	//   client's own conversation id).
	// - Sessions are created explicitly (CreateSession) and ended
	//   explicitly (EndSession).
	// - Ended sessions are terminal: new runs must not start under an
	//   ended session.
	Session struct {
		ID        string
		Status    Status
		CreatedAt time.Time
		EndedAt   *time.Time
	}

	// RunMeta captures persistent metadata associated with one
	// orchestration run (one state.Task's lifecycle).
	RunMeta struct {
		// AgentID is the workflow kind ("chat" or "paper").
		AgentID string
		// RunID is the task id (state.Task.ID).
		RunID string
		// SessionID associates related runs under one conversation.
		SessionID string
		Status    RunStatus
		StartedAt time.Time
		UpdatedAt time.Time
		Labels    map[string]string
		Metadata  map[string]any
	}

	// Store persists session lifecycle state and run metadata. Failures
	// are surfaced to callers; this store is an ambient enrichment, not
	// on the A2A persistence path, so it is never consulted for the
	// "did this exchange happen" question the executor itself answers.
	Store interface {
		// CreateSession creates (or returns) an active session.
		// Idempotent for active sessions: returns the existing session.
		// Returns ErrSessionEnded when the session exists but is terminal.
		CreateSession(ctx context.Context, sessionID string, createdAt time.Time) (Session, error)
		// LoadSession loads an existing session, or ErrSessionNotFound.
		LoadSession(ctx context.Context, sessionID string) (Session, error)
		// EndSession ends a session and returns its terminal state.
		// Idempotent: ending an already-ended session returns it as-is.
		EndSession(ctx context.Context, sessionID string, endedAt time.Time) (Session, error)

		// UpsertRun inserts or updates run metadata.
		UpsertRun(ctx context.Context, run RunMeta) error
		// LoadRun loads run metadata, or ErrRunNotFound.
		LoadRun(ctx context.Context, runID string) (RunMeta, error)
		// ListRunsBySession lists runs for a session, optionally filtered
		// to the given statuses.
		ListRunsBySession(ctx context.Context, sessionID string, statuses []RunStatus) ([]RunMeta, error)
	}

	// Status is a session's lifecycle state.
	Status string

	// RunStatus is a run's lifecycle state: state.TaskStatus's states plus
	// pending. RunStatusCanceled is spelled "canceled", whereas
	// state.TaskCancelled is "cancelled".
	RunStatus string
)

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"

	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCanceled  RunStatus = "canceled"
)

var (
	ErrSessionNotFound = errors.New("session: not found")
	ErrSessionEnded    = errors.New("session: ended")
	ErrRunNotFound     = errors.New("session: run not found")
)
