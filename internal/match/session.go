package match

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
)

var (
	// ErrSessionClosed is returned by a session whose peer has gone away
	ErrSessionClosed = errors.New("session closed")

	// ErrSeatDisconnected is returned by Coordinator.Run when the seat it is
	// waiting on can no longer produce moves
	ErrSeatDisconnected = errors.New("seat disconnected")
)

// Session is a connected player as seen by the lobby and the coordinator.
// Transports implement it; the core never touches their connections.
type Session interface {
	// Send delivers a message to the player. Delivery is best effort: an
	// implementation may drop the message under backpressure and must not
	// block for long. The returned error is for logging only.
	Send(ctx context.Context, msg Message) error

	// ReadMove blocks until the player supplies a well formed move. Malformed
	// input is handled inside the session and never returned.
	ReadMove(ctx context.Context) (game.Move, error)

	// Seat returns the seat assigned by the lobby, or -1 before registration
	Seat() int

	// AssignSeat is called exactly once by the lobby
	AssignSeat(seat int)
}

// Message is one of Init, YourTurn or Update
type Message interface {
	isMessage()
}

// Init tells a seat its number and its starting hand
type Init struct {
	Hand []domino.Domino
	Seat int
}

// YourTurn asks the seat to move
type YourTurn struct{}

// Update tells the other seats about an accepted move
type Update struct {
	game.Update
}

func (Init) isMessage()     {}
func (YourTurn) isMessage() {}
func (Update) isMessage()   {}

// SeatNumber is embedded by session implementations to provide Seat and
// AssignSeat. Only the first assignment sticks.
type SeatNumber struct {
	seat atomic.Int64 // seat+1, zero until assigned
}

// Seat returns the assigned seat or -1
func (s *SeatNumber) Seat() int {
	return int(s.seat.Load()) - 1
}

// AssignSeat records the seat the first time it is called
func (s *SeatNumber) AssignSeat(seat int) {
	s.seat.CompareAndSwap(0, int64(seat)+1)
}
