package match

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
)

// ErrLobbyFull is returned by Join once every seat has been taken
var ErrLobbyFull = errors.New("lobby full")

// Lobby collects exactly seats sessions before a match starts. Any number of
// transport goroutines may call Join; a single Run goroutine owns the seat
// counter and hands seat numbers out in arrival order.
type Lobby struct {
	seats   int
	tickets chan struct{}
	intake  chan Session
	full    chan struct{}
	logger  *log.Logger
}

// NewLobby creates a lobby for the given number of seats
func NewLobby(seats int, logger *log.Logger) *Lobby {
	l := &Lobby{
		seats:   seats,
		tickets: make(chan struct{}, seats),
		intake:  make(chan Session, seats),
		full:    make(chan struct{}),
		logger:  logger.WithPrefix("lobby"),
	}
	for range seats {
		l.tickets <- struct{}{}
	}
	return l
}

// Join queues a session for a seat. It never blocks: once seats sessions
// have been accepted every further call fails with ErrLobbyFull.
func (l *Lobby) Join(s Session) error {
	select {
	case <-l.tickets:
	default:
		return ErrLobbyFull
	}

	// Holding a ticket guarantees room in intake
	l.intake <- s
	return nil
}

// Run assigns seats in arrival order and returns the roster, indexed by
// seat, once every seat is filled.
func (l *Lobby) Run(ctx context.Context) ([]Session, error) {
	roster := make([]Session, 0, l.seats)

	for len(roster) < l.seats {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case s := <-l.intake:
			seat := len(roster)
			s.AssignSeat(seat)
			roster = append(roster, s)
			l.logger.Info("Seat assigned", "seat", seat, "filled", len(roster), "seats", l.seats)
		}
	}

	close(l.full)
	return roster, nil
}

// Full is closed once every seat has been assigned
func (l *Lobby) Full() <-chan struct{} {
	return l.full
}

// Seats returns the number of seats the lobby fills
func (l *Lobby) Seats() int {
	return l.seats
}
