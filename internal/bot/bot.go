// Package bot plays dominoes automatically over any client transport.
package bot

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/dominoes/internal/client"
	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/match"
)

// Bot reads server messages, keeps a table and answers every YourTurn with
// the move its strategy picks
type Bot struct {
	player   client.Player
	strategy Strategy
	table    *client.Table
	logger   *log.Logger
}

// New creates a bot playing through an already connected player
func New(player client.Player, strategy Strategy, logger *log.Logger) *Bot {
	return &Bot{
		player:   player,
		strategy: strategy,
		table:    client.NewTable(),
		logger:   logger.WithPrefix("bot").With("strategy", strategy.Name()),
	}
}

// Table returns the bot's view of the match. Not safe to read while Run is
// going.
func (b *Bot) Table() *client.Table {
	return b.table
}

// Run plays until the connection closes or ctx is cancelled. A closed
// connection is not an error.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-b.player.Messages():
			if !ok {
				b.logger.Info("Connection closed", "seat", b.table.Seat, "hand", len(b.table.Hand))
				return nil
			}
			if err := b.handle(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (b *Bot) handle(ctx context.Context, msg match.Message) error {
	b.table.Apply(msg)

	switch m := msg.(type) {
	case match.Init:
		b.logger = b.logger.With("seat", m.Seat)
		b.logger.Info("Match started", "hand", domino.FormatAll(m.Hand))
	case match.Update:
		b.logger.Debug("Tile played", "by", m.Seat, "side", m.Side, "domino", m.Domino, "board", b.table.Board.String())
	case match.YourTurn:
		move, ok := b.strategy.Choose(b.table)
		if !ok {
			// There is no pass, so the seat can only wait
			b.logger.Warn("No legal move", "hand", domino.FormatAll(b.table.Hand), "board", b.table.Board.String())
			return nil
		}

		b.logger.Debug("Playing", "side", move.Side, "position", move.Position, "domino", b.table.Hand[move.Position])
		if err := b.player.Play(ctx, move); err != nil {
			if errors.Is(err, client.ErrNotConnected) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		b.table.Played(move)
	}
	return nil
}
