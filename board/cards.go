package board

import (
	"math"

	"github.com/samber/lo"
	"golang.org/x/exp/rand"
)

// ScoreRanks are the ranks that count towards the final score. A tile at
// index i is worth 3^(i+1).
var ScoreRanks = []int{3, 6, 12, 24, 48, 96, 192, 384, 768, 1536, 3072, 6144}

// PlaceCard puts tile on a random empty cell of the edge that a move in d
// leaves behind: the left column after Right, the right column after Left,
// the top row after Down and the bottom row after Up. A full edge leaves the
// board unchanged.
func (b Board) PlaceCard(d Direction, tile int, rng *rand.Rand) Board {
	cells := edge(d)
	free := lo.Filter(cells, func(cell [2]int, _ int) bool {
		return b[cell[0]][cell[1]] == 0
	})
	if len(free) == 0 {
		return b
	}
	pick := free[rng.Intn(len(free))]
	b[pick[0]][pick[1]] = tile
	return b
}

func edge(d Direction) [][2]int {
	cells := make([][2]int, Size)
	for i := range cells {
		switch d {
		case Right:
			cells[i] = [2]int{i, 0}
		case Left:
			cells[i] = [2]int{i, Size - 1}
		case Down:
			cells[i] = [2]int{0, i}
		case Up:
			cells[i] = [2]int{Size - 1, i}
		default:
			panic("invalid direction")
		}
	}
	return cells
}

// Generate lays out a fresh starting board: ranks 1, 2 and 3 in random order
// receive 3, 3 and 3 tiles or 4, 3 and 2 tiles with equal odds, each on a
// distinct random cell.
func Generate(rng *rand.Rand) Board {
	var b Board
	tiles := []int{1, 2, 3}
	rng.Shuffle(len(tiles), func(i, j int) {
		tiles[i], tiles[j] = tiles[j], tiles[i]
	})
	fills := []int{3, 3, 3}
	if rng.Intn(2) == 1 {
		fills = []int{4, 3, 2}
	}
	for i, tile := range tiles {
		for n := 0; n < fills[i]; n++ {
			for {
				r, c := rng.Intn(Size), rng.Intn(Size)
				if b[r][c] == 0 {
					b[r][c] = tile
					break
				}
			}
		}
	}
	return b
}

// FinalScore is the end-of-game score: 3^(i+1) for every tile whose rank sits
// at index i of ScoreRanks, plus 3.
func FinalScore(b Board) int {
	points := 0
	for r := range b {
		for _, v := range b[r] {
			if i := lo.IndexOf(ScoreRanks, v); i >= 0 {
				points += int(math.Pow(3, float64(i+1)))
			}
		}
	}
	return points + 3
}
