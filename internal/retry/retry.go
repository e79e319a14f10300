// Package retry implements the core's retry policy: retryable LLM
// errors are retried with exponential backoff (base 500ms, factor 2,
// max 3 attempts, 0-250ms jitter); non-retryable errors are never
// retried at this layer. The same policy backs the "A2A persistence
// retried twice then suppressed" rule in internal/executor.
package retry

import (
	"context"
	"math/rand"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy configures one retry run.
type Policy struct {
	BaseDelay  time.Duration
	Factor     float64
	MaxAttempt int
	JitterMax  time.Duration
}

// LLMPolicy is the exact policy for retryable LLM_ERROR results:
// base 500ms, factor 2, max 3 attempts, jitter 0-250ms.
var LLMPolicy = Policy{
	BaseDelay:  500 * time.Millisecond,
	Factor:     2,
	MaxAttempt: 3,
	JitterMax:  250 * time.Millisecond,
}

// PersistencePolicy backs "persistence errors of A2A messages are retried
// twice then suppressed": two retries after the initial attempt, same
// backoff shape as the LLM policy.
var PersistencePolicy = Policy{
	BaseDelay:  200 * time.Millisecond,
	Factor:     2,
	MaxAttempt: 3,
	JitterMax:  100 * time.Millisecond,
}

// IsRetryable classifies an error for the caller's retry decision. Nodes
// and the executor pass their own classification (derived from an
// a2a.Error's Retryable flag) rather than inspecting errors structurally.
type IsRetryable func(error) bool

// Do runs fn up to p.MaxAttempt times, stopping as soon as fn succeeds or
// retryable reports the error is not retryable. ctx cancellation aborts
// immediately: the cancellation token is honoured at every suspension
// point.
func Do(ctx context.Context, p Policy, retryable IsRetryable, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Factor
	// Jitter is added on top of each interval below, not spread around it.
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0 // bounded by attempt count, not elapsed wall time
	// NewExponentialBackOff already reset to the library's default
	// interval; restart from p.BaseDelay.
	b.Reset()

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempt; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempt {
			break
		}
		wait := b.NextBackOff()
		if p.JitterMax > 0 {
			wait += time.Duration(rand.Int63n(int64(p.JitterMax) + 1))
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// jitterFraction converts an absolute jitter ceiling into the
// randomization fraction backoff.ExponentialBackOff expects, relative to
// the base delay (a reasonable approximation for small, fixed policies
// like ours rather than a generalized unit conversion).
func jitterFraction(p Policy) float64 {
	if p.BaseDelay <= 0 {
		return 0
	}
	f := float64(p.JitterMax) / float64(p.BaseDelay)
	if f > 1 {
		f = 1
	}
	return f
}
