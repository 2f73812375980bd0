package server

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dominoes/internal/match"
)

func TestOutboxQueuesInOrder(t *testing.T) {
	o := NewOutbox[string](3, time.Second, quartz.NewMock(t))
	ctx := context.Background()

	require.NoError(t, o.Push(ctx, "a"))
	require.NoError(t, o.Push(ctx, "b"))
	assert.Equal(t, 2, o.Len())

	assert.Equal(t, "a", <-o.Messages())
	assert.Equal(t, "b", <-o.Messages())
	assert.Zero(t, o.Dropped())
}

// advanceUntil moves the mock clock forward until done yields, so the test
// does not depend on when the timer was registered
func advanceUntil(t *testing.T, clock *quartz.Mock, step time.Duration, done <-chan error) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			t.Fatal("push never returned")
			return nil
		case <-time.After(5 * time.Millisecond):
			clock.Advance(step).MustWait(ctx)
		}
	}
}

func TestOutboxDropsAfterTimeout(t *testing.T) {
	clock := quartz.NewMock(t)
	o := NewOutbox[string](1, time.Second, clock)

	require.NoError(t, o.Push(context.Background(), "first"))

	done := make(chan error, 1)
	go func() { done <- o.Push(context.Background(), "second") }()

	err := advanceUntil(t, clock, 500*time.Millisecond, done)
	assert.ErrorIs(t, err, ErrSendTimeout)
	assert.Equal(t, uint64(1), o.Dropped())

	assert.Equal(t, "first", <-o.Messages())
	assert.Zero(t, o.Len())
}

func TestOutboxWaitsForRoom(t *testing.T) {
	o := NewOutbox[string](1, time.Hour, quartz.NewMock(t))
	require.NoError(t, o.Push(context.Background(), "first"))

	done := make(chan error, 1)
	go func() { done <- o.Push(context.Background(), "second") }()

	assert.Equal(t, "first", <-o.Messages())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("push did not complete once room was made")
	}
	assert.Equal(t, "second", <-o.Messages())
	assert.Zero(t, o.Dropped())
}

func TestOutboxClose(t *testing.T) {
	o := NewOutbox[string](1, time.Hour, quartz.NewMock(t))
	require.NoError(t, o.Push(context.Background(), "first"))

	done := make(chan error, 1)
	go func() { done <- o.Push(context.Background(), "blocked") }()

	o.Close()
	o.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, match.ErrSessionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("blocked push did not observe close")
	}
	assert.ErrorIs(t, o.Push(context.Background(), "late"), match.ErrSessionClosed)

	select {
	case <-o.Done():
	default:
		t.Fatal("Done should be closed")
	}
}

func TestOutboxHonoursContext(t *testing.T) {
	o := NewOutbox[string](1, time.Hour, quartz.NewMock(t))
	require.NoError(t, o.Push(context.Background(), "first"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, o.Push(ctx, "second"), context.Canceled)
}
