package domino

import rand "math/rand/v2"

// DoubleSix returns the 28 tiles of a double-six set in a fixed order
func DoubleSix() []Domino {
	tiles := make([]Domino, 0, SetSize)
	for i := 0; i <= MaxPip; i++ {
		for j := 0; j <= i; j++ {
			tiles = append(tiles, New(i, j))
		}
	}
	return tiles
}

// Shuffled returns a double-six set shuffled with rng
func Shuffled(rng *rand.Rand) []Domino {
	tiles := DoubleSix()
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	return tiles
}
