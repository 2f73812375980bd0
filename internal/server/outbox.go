package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/dominoes/internal/match"
)

// ErrSendTimeout is returned when the outbound queue stayed full for the
// whole send timeout and the message was dropped
var ErrSendTimeout = errors.New("send timeout")

// Outbox is the bounded queue between the coordinator and a connection's
// write pump. Push waits a bounded time for room and then drops.
type Outbox[T any] struct {
	queue   chan T
	done    chan struct{}
	once    sync.Once
	timeout time.Duration
	clock   quartz.Clock
	dropped atomic.Uint64
}

// NewOutbox creates an outbox holding up to capacity messages
func NewOutbox[T any](capacity int, timeout time.Duration, clock quartz.Clock) *Outbox[T] {
	return &Outbox[T]{
		queue:   make(chan T, capacity),
		done:    make(chan struct{}),
		timeout: timeout,
		clock:   clock,
	}
}

// Push queues v. If the queue is full it waits up to the timeout, then
// drops v and returns ErrSendTimeout.
func (o *Outbox[T]) Push(ctx context.Context, v T) error {
	select {
	case <-o.done:
		return match.ErrSessionClosed
	default:
	}

	select {
	case o.queue <- v:
		return nil
	default:
	}

	expired := make(chan struct{})
	timer := o.clock.AfterFunc(o.timeout, func() {
		close(expired)
	}, "outbox", "push")
	defer timer.Stop()

	select {
	case o.queue <- v:
		return nil
	case <-o.done:
		return match.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-expired:
		o.dropped.Add(1)
		return ErrSendTimeout
	}
}

// Messages is drained by the write pump
func (o *Outbox[T]) Messages() <-chan T {
	return o.queue
}

// Done is closed once the outbox has been closed
func (o *Outbox[T]) Done() <-chan struct{} {
	return o.done
}

// Close stops further pushes. Queued messages stay readable.
func (o *Outbox[T]) Close() {
	o.once.Do(func() { close(o.done) })
}

// Dropped returns how many messages timed out
func (o *Outbox[T]) Dropped() uint64 {
	return o.dropped.Load()
}

// Len returns the number of queued messages
func (o *Outbox[T]) Len() int {
	return len(o.queue)
}
