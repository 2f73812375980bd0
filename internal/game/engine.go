package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/dominoes/internal/domino"
)

const (
	MinSeats = 2
	MaxSeats = 4
)

var (
	// ErrInvalidMove is returned by Play when a move cannot be applied. The
	// game is left exactly as it was.
	ErrInvalidMove = errors.New("invalid move")

	ErrInvalidSeatCount = fmt.Errorf("seat count must be between %d and %d", MinSeats, MaxSeats)
)

// Game holds the authoritative state of one match
type Game struct {
	hands    [][]domino.Domino
	board    domino.Board
	boneyard []domino.Domino
	turn     int
	seats    int
}

// handSize returns how many tiles each seat is dealt
func handSize(seats int) int {
	switch seats {
	case 2:
		return 14
	case 3:
		return 9
	default:
		return 7
	}
}

// New deals a shuffled double-six set to the given number of seats. Tiles
// left over after dealing stay in the boneyard.
func New(seats int, rng *rand.Rand) (*Game, error) {
	if seats < MinSeats || seats > MaxSeats {
		return nil, ErrInvalidSeatCount
	}

	tiles := domino.Shuffled(rng)
	size := handSize(seats)

	g := &Game{
		hands: make([][]domino.Domino, seats),
		seats: seats,
	}
	for seat := range seats {
		hand := make([]domino.Domino, size)
		copy(hand, tiles[seat*size:(seat+1)*size])
		g.hands[seat] = hand
	}
	g.boneyard = slices.Clone(tiles[seats*size:])

	return g, nil
}

// NewFromDeal builds a game from explicit hands and an already oriented board.
// The seat count is len(hands).
func NewFromDeal(hands [][]domino.Domino, board []domino.Domino, turn int) (*Game, error) {
	seats := len(hands)
	if seats < MinSeats || seats > MaxSeats {
		return nil, ErrInvalidSeatCount
	}
	if turn < 0 || turn >= seats {
		return nil, fmt.Errorf("turn %d out of range for %d seats", turn, seats)
	}

	g := &Game{
		hands: make([][]domino.Domino, seats),
		board: domino.NewBoard(board...),
		turn:  turn,
		seats: seats,
	}
	for i, hand := range hands {
		g.hands[i] = slices.Clone(hand)
	}
	return g, nil
}

// Play applies a move. On success it returns the placed tile and advances the
// turn pointer; on failure it returns an error wrapping ErrInvalidMove and
// nothing changes.
func (g *Game) Play(m Move) (Update, error) {
	if m.Seat < 0 || m.Seat >= g.seats {
		return Update{}, fmt.Errorf("%w: seat %d does not exist", ErrInvalidMove, m.Seat)
	}
	if m.Seat != g.turn {
		return Update{}, fmt.Errorf("%w: seat %d played out of turn, seat %d is to move", ErrInvalidMove, m.Seat, g.turn)
	}
	if m.Side != Left && m.Side != Right {
		return Update{}, fmt.Errorf("%w: unknown side %d", ErrInvalidMove, int(m.Side))
	}

	hand := g.hands[m.Seat]
	if m.Position < 0 || m.Position >= len(hand) {
		return Update{}, fmt.Errorf("%w: position %d out of range, hand has %d tiles", ErrInvalidMove, m.Position, len(hand))
	}

	tile := hand[m.Position]
	placed, err := g.place(tile, m.Side)
	if err != nil {
		return Update{}, err
	}

	g.hands[m.Seat] = slices.Delete(hand, m.Position, m.Position+1)
	g.turn = (g.turn + 1) % g.seats

	return Update{Side: m.Side, Seat: m.Seat, Domino: placed}, nil
}

// place puts the tile on the board, or returns an error without touching it
func (g *Game) place(tile domino.Domino, side Side) (domino.Domino, error) {
	if g.board.IsEmpty() {
		// The opening tile defines both ends, so it goes down as held
		g.board.PushRight(tile)
		return tile, nil
	}

	switch side {
	case Left:
		placed, ok := tile.MatchLeft(g.board.Left())
		if !ok {
			return domino.Domino{}, fmt.Errorf("%w: %s does not match left end %d", ErrInvalidMove, tile, g.board.Left())
		}
		g.board.PushLeft(placed)
		return placed, nil
	default:
		placed, ok := tile.MatchRight(g.board.Right())
		if !ok {
			return domino.Domino{}, fmt.Errorf("%w: %s does not match right end %d", ErrInvalidMove, tile, g.board.Right())
		}
		g.board.PushRight(placed)
		return placed, nil
	}
}

// LegalMoves lists every move the seat could make right now. It ignores
// whose turn it is.
func (g *Game) LegalMoves(seat int) []Move {
	if seat < 0 || seat >= g.seats {
		return nil
	}

	var moves []Move
	for pos, tile := range g.hands[seat] {
		if g.board.IsEmpty() {
			moves = append(moves, Move{Side: Left, Seat: seat, Position: pos})
			continue
		}
		if tile.Matches(g.board.Left()) {
			moves = append(moves, Move{Side: Left, Seat: seat, Position: pos})
		}
		if tile.Matches(g.board.Right()) {
			moves = append(moves, Move{Side: Right, Seat: seat, Position: pos})
		}
	}
	return moves
}

// Turn returns the seat that moves next
func (g *Game) Turn() int {
	return g.turn
}

// Seats returns the number of seats in the match
func (g *Game) Seats() int {
	return g.seats
}

// Hand returns a copy of a seat's hand, or nil for an unknown seat
func (g *Game) Hand(seat int) []domino.Domino {
	if seat < 0 || seat >= g.seats {
		return nil
	}
	return slices.Clone(g.hands[seat])
}

// Board returns a copy of the board from left to right
func (g *Game) Board() []domino.Domino {
	return g.board.Tiles()
}

// Boneyard returns the tiles that were not dealt to any seat
func (g *Game) Boneyard() []domino.Domino {
	return slices.Clone(g.boneyard)
}

// TileCount returns the number of tiles across hands, board and boneyard
func (g *Game) TileCount() int {
	n := g.board.Len() + len(g.boneyard)
	for _, hand := range g.hands {
		n += len(hand)
	}
	return n
}
