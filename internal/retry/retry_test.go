package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsOnFirstAttempt(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), LLMPolicy, nil, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	p := Policy{BaseDelay: 1, Factor: 1, MaxAttempt: 3, JitterMax: 1}
	calls := 0
	boom := errors.New("boom")
	err := Do(context.Background(), p, func(error) bool { return true }, func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, calls)
}

func TestDoDoesNotRetryNonRetryableErrors(t *testing.T) {
	t.Parallel()

	p := Policy{BaseDelay: 1, Factor: 1, MaxAttempt: 3, JitterMax: 1}
	calls := 0
	boom := errors.New("validation failed")
	err := Do(context.Background(), p, func(error) bool { return false }, func(context.Context) error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestDoAbortsOnContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Policy{BaseDelay: 1, Factor: 1, MaxAttempt: 3, JitterMax: 1}
	calls := 0
	err := Do(ctx, p, func(error) bool { return true }, func(context.Context) error {
		calls++
		return errors.New("should not run")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, calls)
}
