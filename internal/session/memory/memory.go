// Package memory provides an in-memory session.Store, used for tests and
// local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/walterfan/agentcore/internal/session"
)

// Store implements session.Store in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]session.Session
	runs     map[string]session.RunMeta
}

// New returns a ready-to-use in-memory session store.
func New() *Store {
	return &Store{
		sessions: make(map[string]session.Session),
		runs:     make(map[string]session.RunMeta),
	}
}

var _ session.Store = (*Store)(nil)

func (s *Store) CreateSession(_ context.Context, sessionID string, createdAt time.Time) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sessionID]; ok {
		if existing.Status == session.StatusEnded {
			return session.Session{}, session.ErrSessionEnded
		}
		return existing, nil
	}
	sess := session.Session{ID: sessionID, Status: session.StatusActive, CreatedAt: createdAt.UTC()}
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Store) LoadSession(_ context.Context, sessionID string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) EndSession(_ context.Context, sessionID string, endedAt time.Time) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	if sess.Status == session.StatusEnded {
		return sess, nil
	}
	at := endedAt.UTC()
	sess.Status = session.StatusEnded
	sess.EndedAt = &at
	s.sessions[sessionID] = sess
	return sess, nil
}

func (s *Store) UpsertRun(_ context.Context, run session.RunMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.UpdatedAt = time.Now().UTC()
	if run.StartedAt.IsZero() {
		if existing, ok := s.runs[run.RunID]; ok {
			run.StartedAt = existing.StartedAt
		} else {
			run.StartedAt = run.UpdatedAt
		}
	}
	s.runs[run.RunID] = run
	return nil
}

func (s *Store) LoadRun(_ context.Context, runID string) (session.RunMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[runID]
	if !ok {
		return session.RunMeta{}, session.ErrRunNotFound
	}
	return run, nil
}

func (s *Store) ListRunsBySession(_ context.Context, sessionID string, statuses []session.RunStatus) ([]session.RunMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[session.RunStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []session.RunMeta
	for _, run := range s.runs {
		if run.SessionID != sessionID {
			continue
		}
		if len(want) > 0 && !want[run.Status] {
			continue
		}
		out = append(out, run)
	}
	return out, nil
}
