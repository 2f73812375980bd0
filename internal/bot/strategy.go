package bot

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/lox/dominoes/internal/client"
	"github.com/lox/dominoes/internal/game"
)

// Strategy picks a move for the seat that is to play. It returns false when
// no held tile fits either end.
type Strategy interface {
	Name() string
	Choose(t *client.Table) (game.Move, bool)
}

// Strategies lists the built-in strategy names
var Strategies = []string{"first", "random", "heavy"}

// ByName returns a built-in strategy
func ByName(name string, rng *rand.Rand) (Strategy, error) {
	switch name {
	case "first", "":
		return FirstBot{}, nil
	case "random":
		return NewRandBot(rng), nil
	case "heavy":
		return HeavyBot{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// FirstBot plays the first legal tile in hand order
type FirstBot struct{}

func (FirstBot) Name() string { return "first" }

func (FirstBot) Choose(t *client.Table) (game.Move, bool) {
	moves := t.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, false
	}
	return moves[0], true
}

// RandBot is a simple bot that makes uniform random legal moves
type RandBot struct {
	rng *rand.Rand
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand) *RandBot {
	return &RandBot{rng: rng}
}

func (*RandBot) Name() string { return "random" }

func (r *RandBot) Choose(t *client.Table) (game.Move, bool) {
	moves := t.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, false
	}
	return moves[r.rng.IntN(len(moves))], true
}

// HeavyBot gets rid of its highest scoring tiles first, preferring doubles
// on a tie
type HeavyBot struct{}

func (HeavyBot) Name() string { return "heavy" }

func (HeavyBot) Choose(t *client.Table) (game.Move, bool) {
	moves := t.LegalMoves()
	if len(moves) == 0 {
		return game.Move{}, false
	}

	weight := func(m game.Move) int {
		tile := t.Hand[m.Position]
		w := (tile.A + tile.B) * 2
		if tile.IsDouble() {
			w++
		}
		return w
	}
	// Stable, so the earliest of equally heavy moves wins
	slices.SortStableFunc(moves, func(a, b game.Move) int {
		return weight(b) - weight(a)
	})
	return moves[0], true
}
