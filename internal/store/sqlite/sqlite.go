// Package sqlite implements store.Store over a local SQLite file using
// the pure-Go modernc.org/sqlite driver, grounded on the same pattern the
// pack's retrieval-store adapters use for zero-CGO persistence.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/walterfan/agentcore/internal/a2a"
	"github.com/walterfan/agentcore/internal/store"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Store implements store.Store backed by a local SQLite file.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New opens (creating if necessary) the SQLite file at dbPath. A single
// connection is used so concurrent task writes serialize through one
// connection, avoiding SQLITE_BUSY errors under concurrent tasks (spec
// §5: "the persistence store is accessed transactionally per A2A
// write").
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// Init creates the a2a_messages table if it does not already exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS a2a_messages (
		id TEXT PRIMARY KEY,
		task_id TEXT NOT NULL,
		correlation_id TEXT NOT NULL,
		sender TEXT NOT NULL,
		receiver TEXT NOT NULL,
		intent TEXT NOT NULL,
		status TEXT NOT NULL,
		input TEXT,
		output TEXT,
		error_kind TEXT,
		error_message TEXT,
		error_retryable INTEGER,
		latency_ms INTEGER,
		tokens_in INTEGER,
		tokens_out INTEGER,
		tool_calls INTEGER,
		timestamp INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("sqlite: create a2a_messages: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_a2a_messages_task ON a2a_messages(task_id, timestamp)`)
	if err != nil {
		return fmt.Errorf("sqlite: create a2a_messages index: %w", err)
	}
	return nil
}

// Write implements store.Store.
func (s *Store) Write(ctx context.Context, taskID string, msg *a2a.Message) error {
	if taskID == "" {
		return fmt.Errorf("sqlite store: task_id is required")
	}
	if msg == nil {
		return fmt.Errorf("sqlite store: message is required")
	}

	inputJSON, err := json.Marshal(msg.Input)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal input: %w", err)
	}
	outputJSON, err := json.Marshal(msg.Output)
	if err != nil {
		return fmt.Errorf("sqlite store: marshal output: %w", err)
	}

	var errKind, errMessage string
	var errRetryable int
	if msg.Error != nil {
		errKind = string(msg.Error.Kind)
		errMessage = msg.Error.Message
		if msg.Error.Retryable {
			errRetryable = 1
		}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO a2a_messages
			(id, task_id, correlation_id, sender, receiver, intent, status, input, output,
			 error_kind, error_message, error_retryable, latency_ms, tokens_in, tokens_out, tool_calls, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, taskID, msg.CorrelationID, msg.Sender, msg.Receiver, msg.Intent, string(msg.Status),
		string(inputJSON), string(outputJSON), errKind, errMessage, errRetryable,
		msg.Metrics.LatencyMS, msg.Metrics.TokensIn, msg.Metrics.TokensOut, msg.Metrics.ToolCalls,
		msg.Timestamp.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite store: write a2a message: %w", err)
	}
	return nil
}

// ListByTask implements store.Store, ordered by timestamp ascending (spec
// §6: "list by task_id ordered by timestamp").
func (s *Store) ListByTask(ctx context.Context, taskID string) ([]*a2a.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, correlation_id, sender, receiver, intent, status, input, output,
			error_kind, error_message, error_retryable, latency_ms, tokens_in, tokens_out, tool_calls, timestamp
		 FROM a2a_messages WHERE task_id = ? ORDER BY timestamp ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: list by task: %w", err)
	}
	defer rows.Close()

	var out []*a2a.Message
	for rows.Next() {
		m := &a2a.Message{Protocol: a2a.ProtocolVersion}
		var inputJSON, outputJSON string
		var errKind, errMessage sql.NullString
		var errRetryable int
		var tsNano int64
		if err := rows.Scan(&m.ID, &m.CorrelationID, &m.Sender, &m.Receiver, &m.Intent, &m.Status,
			&inputJSON, &outputJSON, &errKind, &errMessage, &errRetryable,
			&m.Metrics.LatencyMS, &m.Metrics.TokensIn, &m.Metrics.TokensOut, &m.Metrics.ToolCalls, &tsNano); err != nil {
			return nil, fmt.Errorf("sqlite store: scan a2a message: %w", err)
		}
		_ = json.Unmarshal([]byte(inputJSON), &m.Input)
		_ = json.Unmarshal([]byte(outputJSON), &m.Output)
		if errKind.Valid && errKind.String != "" {
			m.Error = &a2a.Error{Kind: a2a.ErrorKind(errKind.String), Message: errMessage.String, Retryable: errRetryable != 0}
		}
		m.Timestamp = time.Unix(0, tsNano).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
