package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyAssignsSeatsInArrivalOrder(t *testing.T) {
	lobby := NewLobby(4, testLogger())

	sessions := make([]*fakeSession, 4)
	for i := range sessions {
		sessions[i] = newFakeSession()
		require.NoError(t, lobby.Join(sessions[i]))
	}

	roster, err := lobby.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 4)

	for i, s := range sessions {
		assert.Equal(t, i, s.Seat())
		assert.Same(t, s, roster[i])
	}

	select {
	case <-lobby.Full():
	default:
		t.Fatal("lobby should report full")
	}
}

func TestLobbyRejectsOverflowWithoutBlocking(t *testing.T) {
	lobby := NewLobby(2, testLogger())

	require.NoError(t, lobby.Join(newFakeSession()))
	require.NoError(t, lobby.Join(newFakeSession()))

	extra := newFakeSession()
	done := make(chan error, 1)
	go func() { done <- lobby.Join(extra) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrLobbyFull)
	case <-time.After(time.Second):
		t.Fatal("Join blocked on a full lobby")
	}

	roster, err := lobby.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	assert.Equal(t, -1, extra.Seat(), "rejected session never gets a seat")

	// Still full after the roster is handed over
	assert.ErrorIs(t, lobby.Join(newFakeSession()), ErrLobbyFull)
}

func TestLobbyConcurrentJoins(t *testing.T) {
	lobby := NewLobby(4, testLogger())

	const arrivals = 32
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []*fakeSession
		rejected int
	)
	for range arrivals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := newFakeSession()
			err := lobby.Join(s)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, ErrLobbyFull)
				rejected++
				return
			}
			accepted = append(accepted, s)
		}()
	}

	roster, err := lobby.Run(context.Background())
	require.NoError(t, err)
	wg.Wait()

	assert.Len(t, accepted, 4)
	assert.Equal(t, arrivals-4, rejected)

	seats := make(map[int]bool)
	for i, s := range roster {
		assert.Equal(t, i, s.Seat())
		seats[s.Seat()] = true
	}
	assert.Len(t, seats, 4)
}

func TestLobbyRunStopsOnCancel(t *testing.T) {
	lobby := NewLobby(4, testLogger())
	require.NoError(t, lobby.Join(newFakeSession()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	roster, err := lobby.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, roster)
}

func TestSeatNumberAssignedOnce(t *testing.T) {
	var s SeatNumber
	assert.Equal(t, -1, s.Seat())

	s.AssignSeat(0)
	assert.Equal(t, 0, s.Seat())

	s.AssignSeat(3)
	assert.Equal(t, 0, s.Seat())
}
