package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/dominoes/internal/game"
)

// Coordinator drives one match: it owns the Game and is the only goroutine
// that reads or writes it. Moves are solicited from one seat at a time.
type Coordinator struct {
	id      string
	game    *game.Game
	roster  []Session
	logger  *log.Logger
	monitor Monitor
}

// NewCoordinator binds a dealt game to a roster. The roster must hold one
// session per seat with seats 0..n-1 assigned.
func NewCoordinator(id string, g *game.Game, roster []Session, logger *log.Logger, monitor Monitor) (*Coordinator, error) {
	if len(roster) != g.Seats() {
		return nil, fmt.Errorf("roster has %d sessions for %d seats", len(roster), g.Seats())
	}

	bySeat := make([]Session, len(roster))
	for _, s := range roster {
		seat := s.Seat()
		if seat < 0 || seat >= len(roster) || bySeat[seat] != nil {
			return nil, fmt.Errorf("invalid or duplicate seat %d in roster", seat)
		}
		bySeat[seat] = s
	}

	if monitor == nil {
		monitor = NopMonitor{}
	}

	return &Coordinator{
		id:      id,
		game:    g,
		roster:  bySeat,
		logger:  logger.WithPrefix("match").With("match", id),
		monitor: monitor,
	}, nil
}

// Run deals the hands out and then loops over turns until ctx is cancelled
// or the seat to move disconnects. Nothing ends a match on its own.
func (c *Coordinator) Run(ctx context.Context) error {
	c.monitor.OnMatchStart(c.id, len(c.roster))
	c.logger.Info("Match starting", "seats", len(c.roster))

	err := c.run(ctx)

	c.monitor.OnMatchEnd(c.id, err)
	c.logger.Info("Match ended", "reason", err)
	return err
}

func (c *Coordinator) run(ctx context.Context) error {
	for seat, s := range c.roster {
		c.send(ctx, s, Init{Hand: c.game.Hand(seat), Seat: seat})
	}

	for {
		update, err := c.awaitMove(ctx)
		if err != nil {
			return err
		}
		c.broadcast(ctx, update)
	}
}

// awaitMove prompts the seat whose turn it is and keeps reading until the
// engine accepts a move. Rejected moves are retried silently.
func (c *Coordinator) awaitMove(ctx context.Context) (game.Update, error) {
	seat := c.game.Turn()
	s := c.roster[seat]

	c.send(ctx, s, YourTurn{})

	for {
		move, err := s.ReadMove(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return game.Update{}, ctx.Err()
			}
			return game.Update{}, fmt.Errorf("%w: seat %d: %w", ErrSeatDisconnected, seat, err)
		}

		update, err := c.game.Play(move)
		if errors.Is(err, game.ErrInvalidMove) {
			c.logger.Debug("Move rejected", "seat", seat, "move", move, "error", err)
			c.monitor.OnMoveRejected(c.id, seat, err)
			continue
		}
		if err != nil {
			return game.Update{}, err
		}

		c.logger.Debug("Move accepted",
			"seat", seat,
			"side", update.Side,
			"domino", update.Domino,
			"next", c.game.Turn())
		c.monitor.OnMoveAccepted(c.id, update)
		return update, nil
	}
}

// broadcast sends the update to every seat but the mover and returns once
// all sends have finished, so updates from different moves never interleave.
func (c *Coordinator) broadcast(ctx context.Context, update game.Update) {
	var g errgroup.Group
	for seat, s := range c.roster {
		if seat == update.Seat {
			continue
		}
		g.Go(func() error {
			c.send(ctx, s, Update{Update: update})
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Coordinator) send(ctx context.Context, s Session, msg Message) {
	if err := s.Send(ctx, msg); err != nil {
		c.logger.Debug("Failed to deliver message", "seat", s.Seat(), "type", fmt.Sprintf("%T", msg), "error", err)
		c.monitor.OnSendFailed(c.id, s.Seat(), err)
	}
}

// ID returns the match identifier
func (c *Coordinator) ID() string {
	return c.id
}

// Roster returns the sessions indexed by seat
func (c *Coordinator) Roster() []Session {
	out := make([]Session, len(c.roster))
	copy(out, c.roster)
	return out
}
