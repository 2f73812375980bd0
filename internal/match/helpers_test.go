package match

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/dominoes/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// fakeSession is an in-memory Session driven by the test
type fakeSession struct {
	SeatNumber
	inbox     chan Message
	moves     chan game.Move
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		inbox:  make(chan Message, 64),
		moves:  make(chan game.Move, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeSession) Send(ctx context.Context, msg Message) error {
	select {
	case f.inbox <- msg:
		return nil
	default:
		return io.ErrShortWrite
	}
}

func (f *fakeSession) ReadMove(ctx context.Context) (game.Move, error) {
	select {
	case <-ctx.Done():
		return game.Move{}, ctx.Err()
	case <-f.closed:
		return game.Move{}, ErrSessionClosed
	case m := <-f.moves:
		return m, nil
	}
}

func (f *fakeSession) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSession) play(side game.Side, position int) {
	f.moves <- game.Move{Side: side, Seat: f.Seat(), Position: position}
}

// next waits for the next message delivered to the session
func (f *fakeSession) next(t *testing.T) Message {
	t.Helper()
	select {
	case msg := <-f.inbox:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("seat %d: timed out waiting for a message", f.Seat())
		return nil
	}
}

// assertQuiet checks nothing else was delivered
func (f *fakeSession) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case msg := <-f.inbox:
		t.Fatalf("seat %d: unexpected message %#v", f.Seat(), msg)
	case <-time.After(50 * time.Millisecond):
	}
}

// recordingMonitor counts callbacks
type recordingMonitor struct {
	mu       sync.Mutex
	started  []string
	ended    []error
	accepted []game.Update
	rejected int
	failed   int
}

func (r *recordingMonitor) OnMatchStart(id string, seats int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, id)
}

func (r *recordingMonitor) OnMatchEnd(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, err)
}

func (r *recordingMonitor) OnMoveAccepted(id string, u game.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted = append(r.accepted, u)
}

func (r *recordingMonitor) OnMoveRejected(id string, seat int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
}

func (r *recordingMonitor) OnSendFailed(id string, seat int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed++
}

func (r *recordingMonitor) startedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.started)
}

func waitForCondition(t *testing.T, cond func() bool, timeout time.Duration, msg string) {
	t.Helper()
	require.Eventually(t, cond, timeout, 5*time.Millisecond, msg)
}
