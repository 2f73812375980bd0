// Package game implements the rules engine for a block game of dominoes.
//
// The main type is Game, which owns every seat's hand, the board and the
// turn pointer for a single match.
//
// # Basic Usage
//
// Deal a match and apply moves:
//
//	g, err := game.New(4, randutil.New(42))
//	// seat 0 opens with the third tile in its hand
//	update, err := g.Play(game.Move{Side: game.Left, Seat: 0, Position: 2})
//	if errors.Is(err, game.ErrInvalidMove) {
//	    // nothing changed, ask the same seat again
//	}
//
// # Deterministic Testing
//
// New takes the RNG used for the deal, so a fixed seed always produces the
// same hands. NewFromDeal builds a game from explicit hands and board for
// scenario tests:
//
//	g, err := game.NewFromDeal([][]domino.Domino{hand0, hand1}, board, 0)
//
// # Concurrency
//
// Game is not safe for concurrent use. A match is driven by exactly one
// goroutine (see internal/match) which is the only reader and writer.
//
// There is no end-of-game detection: the engine never recognises a won or
// blocked position, and it never produces a skip.
package game
