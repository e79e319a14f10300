// Package telemetry exposes the Trace & Metrics Sink: a per-task trace
// context plus counters, histograms, and gauges covering rate, errors,
// duration, and tool-call volume. Tracing and metric recording never
// propagate failures to the caller — a swallowed-error counter absorbs
// them instead (see Sink.recoverAndSwallow).
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type (
	// Logger emits structured, leveled log records.
	Logger interface {
		Debug(ctx context.Context, msg string, keyvals ...any)
		Info(ctx context.Context, msg string, keyvals ...any)
		Warn(ctx context.Context, msg string, keyvals ...any)
		Error(ctx context.Context, msg string, keyvals ...any)
	}

	// Metrics records counters, timers, and gauges. Implementations must
	// be safe for concurrent use by many tasks.
	Metrics interface {
		IncCounter(name string, value float64, tags ...string)
		RecordTimer(name string, duration time.Duration, tags ...string)
		RecordGauge(name string, value float64, tags ...string)
	}

	// Tracer starts and retrieves spans.
	Tracer interface {
		Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
		Span(ctx context.Context) Span
	}

	// Span is a single unit of traced work.
	Span interface {
		End(opts ...trace.SpanEndOption)
		AddEvent(name string, attrs ...any)
		SetStatus(code codes.Code, description string)
		RecordError(err error, opts ...trace.EventOption)
	}
)

// Sink bundles the three telemetry collaborators the core reads from a
// single task-scoped context, plus the counters and recorders this
// package names explicitly (task creation/completion, step duration,
// agent/tool call outcomes, revision rounds, and so on).
type Sink struct {
	Logger  Logger
	Metrics Metrics
	Tracer  Tracer

	// Detailed enables logging full prompts/responses; when false, only
	// lengths and hashes are logged.
	Detailed bool
}

// NewSink constructs a Sink from the three collaborators. Pass Noop*
// implementations for any collaborator that should be disabled.
func NewSink(logger Logger, metrics Metrics, tracer Tracer, detailed bool) *Sink {
	return &Sink{Logger: logger, Metrics: metrics, Tracer: tracer, Detailed: detailed}
}

// NewTrace opens a task-scoped trace context and records task creation.
func (s *Sink) NewTrace(ctx context.Context, taskID string) context.Context {
	ctx, span := s.Tracer.Start(ctx, "task")
	span.AddEvent("task_created", "task_id", taskID)
	s.safeCounter("task_created_total", 1, "task_id", taskID)
	return ctx
}

// TraceLLMCall records one LLM round. When Detailed is false, prompt and
// response are reduced to a length + hash rather than logged verbatim.
func (s *Sink) TraceLLMCall(ctx context.Context, model, prompt, response string, latency time.Duration) {
	defer s.recoverAndSwallow(ctx)
	fields := []any{"model", model, "latency_ms", latency.Milliseconds()}
	if s.Detailed {
		fields = append(fields, "prompt", prompt, "response", response)
	} else {
		fields = append(fields, "prompt_len", len(prompt), "response_len", len(response))
	}
	s.Logger.Debug(ctx, "llm_call", fields...)
	s.Metrics.RecordTimer("llm_call_duration_ms", latency, "model", model)
}

// TraceToolCall records one tool invocation, successful or not.
func (s *Sink) TraceToolCall(ctx context.Context, agent, tool string, args, result any, callErr error, latency time.Duration) {
	defer s.recoverAndSwallow(ctx)
	status := "ok"
	if callErr != nil {
		status = "error"
	}
	s.Logger.Debug(ctx, "tool_call", "agent", agent, "tool", tool, "status", status, "latency_ms", latency.Milliseconds())
	s.Metrics.IncCounter("tool_calls_total", 1, "agent", agent, "tool", tool, "status", status)
	s.Metrics.RecordTimer("tool_call_duration_ms", latency, "agent", agent, "tool", tool)
}

// StepDuration records a node's wall-clock duration, tagged by outcome.
func (s *Sink) StepDuration(ctx context.Context, node, status string, d time.Duration) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordTimer("step_duration_ms", d, "node", node, "status", status)
}

// AgentCall records one agent invocation outcome.
func (s *Sink) AgentCall(ctx context.Context, agent, status string) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.IncCounter("agent_calls_total", 1, "agent", agent, "status", status)
}

// TaskCompleted records the terminal status of a task.
func (s *Sink) TaskCompleted(ctx context.Context, status string) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.IncCounter("task_completed_total", 1, "status", status)
}

// RevisionRound records the current revision counter for a paper task.
func (s *Sink) RevisionRound(ctx context.Context, round int) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordGauge("revision_round", float64(round))
}

// ComplianceScore records the paper workflow's compliance score.
func (s *Sink) ComplianceScore(ctx context.Context, score float64) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordGauge("compliance_score", score)
}

// ReferencesCount records the number of references gathered.
func (s *Sink) ReferencesCount(ctx context.Context, n int) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordGauge("references_count", float64(n))
}

// ManuscriptWordCount records the total manuscript word count.
func (s *Sink) ManuscriptWordCount(ctx context.Context, n int) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordGauge("manuscript_word_count", float64(n))
}

// ActiveTasks records the number of concurrently running tasks or streams.
func (s *Sink) ActiveTasks(ctx context.Context, n int) {
	defer s.recoverAndSwallow(ctx)
	s.Metrics.RecordGauge("active_tasks", float64(n))
}

func (s *Sink) safeCounter(name string, v float64, tags ...string) {
	defer func() { _ = recover() }()
	s.Metrics.IncCounter(name, v, tags...)
}

// recoverAndSwallow absorbs any panic from a telemetry backend and
// increments a single counter: tracing failures never propagate, they
// are swallowed and a single counter is incremented instead.
func (s *Sink) recoverAndSwallow(ctx context.Context) {
	if r := recover(); r != nil {
		func() {
			defer func() { _ = recover() }()
			s.Metrics.IncCounter("telemetry_sink_errors_total", 1)
		}()
	}
}
