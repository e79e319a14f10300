package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type panickyMetrics struct {
	NoopMetrics
	calls int
}

func (p *panickyMetrics) IncCounter(name string, value float64, tags ...string) {
	p.calls++
	if name != "telemetry_sink_errors_total" {
		panic("boom")
	}
}

func TestSinkSwallowsMetricsPanics(t *testing.T) {
	t.Parallel()

	m := &panickyMetrics{}
	sink := NewSink(NewNoopLogger(), m, NewNoopTracer(), false)

	require.NotPanics(t, func() {
		sink.AgentCall(context.Background(), "utility", "ok")
	})
	require.Equal(t, 2, m.calls) // the panicking call, then the swallow counter
}

func TestSinkRecordsStepDuration(t *testing.T) {
	t.Parallel()

	sink := NewSink(NewNoopLogger(), NewNoopMetrics(), NewNoopTracer(), true)
	require.NotPanics(t, func() {
		sink.StepDuration(context.Background(), "writer", "ok", 5*time.Millisecond)
	})
}

func TestNewTraceRecordsTaskCreated(t *testing.T) {
	t.Parallel()

	sink := NewSink(NewNoopLogger(), NewNoopMetrics(), NewNoopTracer(), false)
	ctx := sink.NewTrace(context.Background(), "task-1")
	require.NotNil(t, ctx)
}
