package domino

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxPip is the highest pip value in a double-six set
const MaxPip = 6

// SetSize is the number of tiles in a double-six set
const SetSize = 28

// Domino is a single tile. A and B are the pips in their current orientation;
// the tile itself is unordered, orientation only matters once it is on the board.
type Domino struct {
	A int `json:"a"`
	B int `json:"b"`
}

// New creates a domino from two pip values
func New(a, b int) Domino {
	return Domino{A: a, B: b}
}

// Reverse returns the domino with its pips swapped
func (d Domino) Reverse() Domino {
	return Domino{A: d.B, B: d.A}
}

// MatchLeft orients the domino so that its B pip touches target, making it
// suitable for prepending to the left end of a board.
func (d Domino) MatchLeft(target int) (Domino, bool) {
	switch target {
	case d.A:
		return d.Reverse(), true
	case d.B:
		return d, true
	default:
		return Domino{}, false
	}
}

// MatchRight orients the domino so that its A pip touches target, making it
// suitable for appending to the right end of a board.
func (d Domino) MatchRight(target int) (Domino, bool) {
	switch target {
	case d.A:
		return d, true
	case d.B:
		return d.Reverse(), true
	default:
		return Domino{}, false
	}
}

// Matches reports whether either pip equals target
func (d Domino) Matches(target int) bool {
	return d.A == target || d.B == target
}

// IsDouble returns true if both pips are equal
func (d Domino) IsDouble() bool {
	return d.A == d.B
}

// Same reports whether two dominoes are the same tile, ignoring orientation
func (d Domino) Same(other Domino) bool {
	return d == other || d == other.Reverse()
}

// Valid returns true if both pips are within 0..MaxPip
func (d Domino) Valid() bool {
	return d.A >= 0 && d.A <= MaxPip && d.B >= 0 && d.B <= MaxPip
}

// String renders the domino as "a:b"
func (d Domino) String() string {
	return strconv.Itoa(d.A) + ":" + strconv.Itoa(d.B)
}

// Parse reads a domino in "a:b" form
func Parse(s string) (Domino, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Domino{}, fmt.Errorf("invalid domino %q", s)
	}

	a, err := strconv.Atoi(left)
	if err != nil {
		return Domino{}, fmt.Errorf("invalid domino %q: %w", s, err)
	}
	b, err := strconv.Atoi(right)
	if err != nil {
		return Domino{}, fmt.Errorf("invalid domino %q: %w", s, err)
	}

	d := New(a, b)
	if !d.Valid() {
		return Domino{}, fmt.Errorf("invalid domino %q: pips must be between 0 and %d", s, MaxPip)
	}
	return d, nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(s string) Domino {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FormatAll renders a list of dominoes separated by spaces
func FormatAll(dominoes []Domino) string {
	parts := make([]string, len(dominoes))
	for i, d := range dominoes {
		parts[i] = d.String()
	}
	return strings.Join(parts, " ")
}
