package client

import (
	"slices"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

// Table is a player's reconstruction of the match from the messages it
// receives. The server never echoes a seat's own move, so a move the player
// sends stays pending until the next message shows it was accepted.
type Table struct {
	Seat    int
	Hand    []domino.Domino
	Board   domino.Board
	MyTurn  bool
	Started bool

	pending *game.Move
}

// NewTable returns a table that has not seen Init yet
func NewTable() *Table {
	return &Table{Seat: -1}
}

// Apply folds a server message into the table
func (t *Table) Apply(msg match.Message) {
	switch m := msg.(type) {
	case match.Init:
		t.Seat = m.Seat
		t.Hand = slices.Clone(m.Hand)
		t.Board = domino.NewBoard()
		t.MyTurn = false
		t.Started = true
		t.pending = nil
	case match.YourTurn:
		t.commit()
		t.MyTurn = true
	case match.Update:
		t.commit()
		t.place(m.Domino, m.Side)
	}
}

// Played records a move sent to the server
func (t *Table) Played(m game.Move) {
	t.pending = &m
	t.MyTurn = false
}

// Pending returns the move awaiting confirmation, if any
func (t *Table) Pending() (game.Move, bool) {
	if t.pending == nil {
		return game.Move{}, false
	}
	return *t.pending, true
}

// LegalMoves lists the moves the held tiles allow against the board ends
func (t *Table) LegalMoves() []game.Move {
	var moves []game.Move
	for pos, tile := range t.Hand {
		if t.Board.IsEmpty() {
			moves = append(moves, game.Move{Side: game.Left, Seat: t.Seat, Position: pos})
			continue
		}
		if tile.Matches(t.Board.Left()) {
			moves = append(moves, game.Move{Side: game.Left, Seat: t.Seat, Position: pos})
		}
		if tile.Matches(t.Board.Right()) {
			moves = append(moves, game.Move{Side: game.Right, Seat: t.Seat, Position: pos})
		}
	}
	return moves
}

// commit applies the pending move; any later message means it was accepted
func (t *Table) commit() {
	if t.pending == nil {
		return
	}
	m := *t.pending
	t.pending = nil
	if m.Position < 0 || m.Position >= len(t.Hand) {
		return
	}

	tile := t.Hand[m.Position]
	if !t.Board.IsEmpty() {
		var ok bool
		if m.Side == game.Left {
			tile, ok = tile.MatchLeft(t.Board.Left())
		} else {
			tile, ok = tile.MatchRight(t.Board.Right())
		}
		if !ok {
			return
		}
	}
	t.Hand = slices.Delete(t.Hand, m.Position, m.Position+1)
	t.place(tile, m.Side)
}

// place puts an already oriented tile on the board
func (t *Table) place(d domino.Domino, side game.Side) {
	if t.Board.IsEmpty() || side == game.Right {
		t.Board.PushRight(d)
		return
	}
	t.Board.PushLeft(d)
}
