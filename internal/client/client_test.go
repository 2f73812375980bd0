package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
	"github.com/lox/dominoes/internal/randutil"
	"github.com/lox/dominoes/internal/server"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := server.NewServer(testLogger(), randutil.New(7), server.WithSeats(2))
	ts := httptest.NewServer(srv.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Manager().Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})
	return ts
}

func next(t *testing.T, p Player) match.Message {
	t.Helper()
	select {
	case msg, ok := <-p.Messages():
		require.True(t, ok, "connection closed")
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPlayersOfBothTransports(t *testing.T) {
	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws, err := Dial(ctx, TransportWebSocket, ts.URL, "alice", testLogger())
	require.NoError(t, err)
	defer ws.Close()

	stream, err := Dial(ctx, TransportStream, ts.URL, "bob", testLogger())
	require.NoError(t, err)
	defer stream.Close()

	seats := map[int]Player{}
	hands := map[int]match.Init{}
	for _, p := range []Player{ws, stream} {
		init, ok := next(t, p).(match.Init)
		require.True(t, ok)
		assert.Len(t, init.Hand, 14)
		seats[init.Seat] = p
		hands[init.Seat] = init
	}
	require.Len(t, seats, 2)

	assert.Equal(t, match.YourTurn{}, next(t, seats[0]))
	require.NoError(t, seats[0].PlayText(ctx, "right 0"))

	want := match.Update{Update: game.Update{Side: game.Right, Seat: 0, Domino: hands[0].Hand[0]}}
	assert.Equal(t, want, next(t, seats[1]))
	assert.Equal(t, match.YourTurn{}, next(t, seats[1]))
}

func TestMessagesCloseWhenMatchEnds(t *testing.T) {
	ts := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a, err := Dial(ctx, TransportWebSocket, ts.URL, "a", testLogger())
	require.NoError(t, err)
	defer a.Close()
	b, err := Dial(ctx, TransportWebSocket, ts.URL, "b", testLogger())
	require.NoError(t, err)
	defer b.Close()

	seats := map[int]Player{}
	for _, p := range []Player{a, b} {
		init, ok := next(t, p).(match.Init)
		require.True(t, ok)
		seats[init.Seat] = p
	}
	mover, idle := seats[0], seats[1]
	require.NoError(t, mover.Close())

	// The mover leaving ends the match and the server hangs up on the rest
	deadline := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-idle.Messages():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("connection was not closed")
		}
	}
}

func TestDialUnknownTransport(t *testing.T) {
	_, err := Dial(context.Background(), "carrier-pigeon", "http://localhost:1", "x", testLogger())
	assert.Error(t, err)
}

func TestClosedClientRejectsMoves(t *testing.T) {
	c := NewClient("http://localhost:1", "x", testLogger())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Play(context.Background(), game.Move{}), ErrNotConnected)
	assert.False(t, c.IsConnected())
}
