package domino

// Board is the chain of played tiles. Once non-empty it has two open ends:
// the A pip of the first tile and the B pip of the last.
type Board struct {
	tiles []Domino
}

// NewBoard creates a board from already oriented tiles
func NewBoard(tiles ...Domino) Board {
	b := Board{tiles: make([]Domino, len(tiles))}
	copy(b.tiles, tiles)
	return b
}

// IsEmpty returns true before the first tile is placed
func (b *Board) IsEmpty() bool {
	return len(b.tiles) == 0
}

// Len returns the number of tiles on the board
func (b *Board) Len() int {
	return len(b.tiles)
}

// Left returns the open pip on the left end. Only meaningful when not empty.
func (b *Board) Left() int {
	return b.tiles[0].A
}

// Right returns the open pip on the right end. Only meaningful when not empty.
func (b *Board) Right() int {
	return b.tiles[len(b.tiles)-1].B
}

// PushLeft prepends an oriented tile
func (b *Board) PushLeft(d Domino) {
	b.tiles = append(b.tiles, Domino{})
	copy(b.tiles[1:], b.tiles)
	b.tiles[0] = d
}

// PushRight appends an oriented tile
func (b *Board) PushRight(d Domino) {
	b.tiles = append(b.tiles, d)
}

// Tiles returns a copy of the chain from left to right
func (b *Board) Tiles() []Domino {
	out := make([]Domino, len(b.tiles))
	copy(out, b.tiles)
	return out
}

// String renders the chain from left to right
func (b *Board) String() string {
	return FormatAll(b.tiles)
}
