package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

// pendingMoves bounds how many parsed moves may wait for ReadMove
const pendingMoves = 16

// playerConn is what the server tracks for every connected player
type playerConn interface {
	match.Session
	Close() error
	Done() <-chan struct{}
	Context() context.Context
	ID() string
	Name() string
	Transport() string
}

// session is the transport independent half of a connected player. The
// transports embed it and supply the wire encoding of each message.
type session[T any] struct {
	match.SeatNumber

	id        string
	name      string
	transport string
	outbox    *Outbox[T]
	encode    func(match.Message) (T, error)
	moves     chan game.Move
	logger    *log.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closer    func() error
}

func newSession[T any](transport, name string, outbox *Outbox[T], encode func(match.Message) (T, error), closer func() error, logger *log.Logger) *session[T] {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &session[T]{
		id:        id,
		name:      name,
		transport: transport,
		outbox:    outbox,
		encode:    encode,
		moves:     make(chan game.Move, pendingMoves),
		logger:    logger.With("conn", id[:8], "transport", transport),
		ctx:       ctx,
		cancel:    cancel,
		closer:    closer,
	}
}

// Send implements match.Session
func (s *session[T]) Send(ctx context.Context, msg match.Message) error {
	v, err := s.encode(msg)
	if err != nil {
		return err
	}

	// Moves sent ahead of the prompt were aimed at an older hand
	if _, ok := msg.(match.YourTurn); ok {
		s.discardPending()
	}

	err = s.outbox.Push(ctx, v)
	if errors.Is(err, ErrSendTimeout) {
		s.logger.Warn("Outbound queue full, message dropped", "seat", s.Seat(), "dropped", s.outbox.Dropped())
	}
	return err
}

// ReadMove implements match.Session
func (s *session[T]) ReadMove(ctx context.Context) (game.Move, error) {
	select {
	case <-ctx.Done():
		return game.Move{}, ctx.Err()
	case <-s.ctx.Done():
		return game.Move{}, match.ErrSessionClosed
	case m := <-s.moves:
		return m, nil
	}
}

// offer hands a well formed move to ReadMove. Moves beyond the pending
// limit are discarded.
func (s *session[T]) offer(m game.Move) {
	select {
	case s.moves <- m:
	default:
		s.logger.Debug("Too many pending moves, discarding", "move", m)
	}
}

func (s *session[T]) discardPending() {
	for {
		select {
		case m := <-s.moves:
			s.logger.Debug("Discarding move sent out of turn", "move", m)
		default:
			return
		}
	}
}

// Close tears the connection down. Safe to call more than once.
func (s *session[T]) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		s.outbox.Close()
		if s.closer != nil {
			err = s.closer()
		}
	})
	return err
}

// Done is closed once the session has been closed
func (s *session[T]) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Context is cancelled when the session closes
func (s *session[T]) Context() context.Context {
	return s.ctx
}

// ID returns the connection identifier
func (s *session[T]) ID() string {
	return s.id
}

// Name returns the name the player connected with, if any
func (s *session[T]) Name() string {
	return s.name
}

// Transport names the transport the player connected over
func (s *session[T]) Transport() string {
	return s.transport
}
