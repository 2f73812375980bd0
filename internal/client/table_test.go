package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/dominoes/internal/domino"
	"github.com/lox/dominoes/internal/game"
	"github.com/lox/dominoes/internal/match"
)

func TestTableTracksMatch(t *testing.T) {
	table := NewTable()
	assert.False(t, table.Started)

	table.Apply(match.Init{Seat: 1, Hand: []domino.Domino{domino.New(6, 6), domino.New(3, 2)}})
	assert.Equal(t, 1, table.Seat)
	assert.True(t, table.Board.IsEmpty())

	// Seat 0 opens with 3:6
	table.Apply(match.Update{Update: game.Update{Side: game.Left, Seat: 0, Domino: domino.New(3, 6)}})
	assert.Equal(t, "3:6", table.Board.String())

	table.Apply(match.YourTurn{})
	assert.True(t, table.MyTurn)
	assert.ElementsMatch(t, []game.Move{
		{Side: game.Right, Seat: 1, Position: 0},
		{Side: game.Left, Seat: 1, Position: 1},
	}, table.LegalMoves())

	table.Played(game.Move{Side: game.Left, Seat: 1, Position: 1})
	assert.False(t, table.MyTurn)
	_, ok := table.Pending()
	assert.True(t, ok)
	assert.Len(t, table.Hand, 2)

	// The next seat's move confirms ours
	table.Apply(match.Update{Update: game.Update{Side: game.Right, Seat: 0, Domino: domino.New(6, 1)}})
	_, ok = table.Pending()
	assert.False(t, ok)
	require.Len(t, table.Hand, 1)
	assert.Equal(t, domino.New(6, 6), table.Hand[0])
	assert.Equal(t, "2:3 3:6 6:1", table.Board.String())
}

func TestTableEmptyBoardAllowsAnyTile(t *testing.T) {
	table := NewTable()
	table.Apply(match.Init{Seat: 0, Hand: []domino.Domino{domino.New(1, 2), domino.New(4, 5)}})
	assert.Len(t, table.LegalMoves(), 2)

	table.Played(game.Move{Side: game.Right, Seat: 0, Position: 1})
	table.Apply(match.YourTurn{})
	assert.Equal(t, "4:5", table.Board.String())
	assert.Equal(t, []domino.Domino{domino.New(1, 2)}, table.Hand)
}
