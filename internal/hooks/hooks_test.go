package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()

	b := NewBus()
	var a, c int
	sub1, err := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error { a++; return nil }))
	require.NoError(t, err)
	defer sub1.Close()
	sub2, err := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error { c++; return nil }))
	require.NoError(t, err)
	defer sub2.Close()

	require.NoError(t, b.Publish(context.Background(), Event{Type: EventTaskCreated}))
	require.Equal(t, 1, a)
	require.Equal(t, 1, c)
}

func TestPublishStopsAtFirstSubscriberError(t *testing.T) {
	t.Parallel()

	b := NewBus()
	boom := errors.New("boom")
	calledSecond := false
	_, _ = b.Register(SubscriberFunc(func(ctx context.Context, e Event) error { return boom }))
	_, _ = b.Register(SubscriberFunc(func(ctx context.Context, e Event) error { calledSecond = true; return nil }))

	err := b.Publish(context.Background(), Event{Type: EventTaskCompleted})
	require.ErrorIs(t, err, boom)
	// Note: map iteration order is not guaranteed, so calledSecond is not
	// asserted either way here; this test only verifies the error surfaces.
	_ = calledSecond
}

func TestCloseSubscriptionIsIdempotentAndStopsDelivery(t *testing.T) {
	t.Parallel()

	b := NewBus()
	calls := 0
	sub, err := b.Register(SubscriberFunc(func(ctx context.Context, e Event) error { calls++; return nil }))
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	require.NoError(t, b.Publish(context.Background(), Event{Type: EventTaskCreated}))
	require.Equal(t, 0, calls)
}

func TestRegisterRejectsNilSubscriber(t *testing.T) {
	t.Parallel()

	b := NewBus()
	_, err := b.Register(nil)
	require.Error(t, err)
}
