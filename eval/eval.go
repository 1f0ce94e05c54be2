package eval

import "threes/board"

// BigTile is the rank above which a tile earns the big tile bonus, and above
// which a previous maximum must sit before a new record earns the new max bonus.
const BigTile = 192

// Weights are the point values of each board feature.
type Weights struct {
	Empty          int `yaml:"empty"`           // Per empty cell
	Merge          int `yaml:"merge"`           // Per adjacent mergeable pair of tiles
	Double         int `yaml:"double"`          // Constant term, counted twice per board
	BigTile        int `yaml:"big_tile"`        // Per tile above BigTile
	AdjacentDouble int `yaml:"adjacent_double"` // Per tile next to a tile double its value
	Trapped        int `yaml:"trapped"`         // Lost per axis a tile is trapped on
	Corner         int `yaml:"corner"`          // Largest tile sits in a corner
	NewMax         int `yaml:"new_max"`         // A move sets a new record above BigTile
}

var DefaultWeights = Weights{
	Empty:          2,
	Merge:          3,
	Double:         1,
	BigTile:        2,
	AdjacentDouble: 1,
	Trapped:        5,
	Corner:         20,
	NewMax:         400,
}

// Func scores a board given the largest tile seen before the move sequence
// being scored.
type Func func(b board.Board, currMax int) int

type Evaluator struct {
	weights Weights
}

func New(weights Weights) Evaluator {
	return Evaluator{weights: weights}
}

var defaultEvaluator = New(DefaultWeights)

// Score rates b with the default weights.
func Score(b board.Board, currMax int) int {
	return defaultEvaluator.Score(b, currMax)
}

// Score estimates how long a board can survive: open space, pending merges and
// orderly large tiles count for it, small tiles boxed in by large ones count
// against it.
func (e Evaluator) Score(b board.Board, currMax int) int {
	w := e.weights
	score := b.Count(0)*w.Empty +
		mergeablePairs(b)*w.Merge +
		w.Double*2 +
		bigTiles(b)*w.BigTile +
		adjacentDoubles(b)*w.AdjacentDouble -
		trappedAxes(b)*w.Trapped

	highest := b.Max()
	if highest > 0 && inCorner(b, highest) {
		score += w.Corner
	}
	if highest > currMax && currMax > BigTile {
		score += w.NewMax
	}
	return score
}

func mergeablePairs(b board.Board) int {
	n := 0
	for r := 0; r < board.Size; r++ {
		for c := 0; c < board.Size-1; c++ {
			if board.CanMergeExcludingEmpty(b[r][c], b[r][c+1]) {
				n++
			}
		}
	}
	for r := 0; r < board.Size-1; r++ {
		for c := 0; c < board.Size; c++ {
			if board.CanMergeExcludingEmpty(b[r][c], b[r+1][c]) {
				n++
			}
		}
	}
	return n
}

func bigTiles(b board.Board) int {
	n := 0
	for r := range b {
		for _, v := range b[r] {
			if v > BigTile {
				n++
			}
		}
	}
	return n
}

func adjacentDoubles(b board.Board) int {
	n := 0
	for r := range b {
		for c := range b[r] {
			if b[r][c] > 0 && nextToDouble(b, r, c) {
				n++
			}
		}
	}
	return n
}

func nextToDouble(b board.Board, r, c int) bool {
	double := b[r][c] * 2
	return (r < board.Size-1 && b[r+1][c] == double) ||
		(r > 0 && b[r-1][c] == double) ||
		(c < board.Size-1 && b[r][c+1] == double) ||
		(c > 0 && b[r][c-1] == double)
}

// trappedAxes counts, over every tile, the axes on which both neighbours are
// larger than the tile and larger than 2. The board edge counts as a wall.
func trappedAxes(b board.Board) int {
	n := 0
	for r := range b {
		for c := range b[r] {
			v := b[r][c]
			if v == 0 {
				continue
			}
			if trapped(v, neighbour(b, r-1, c), neighbour(b, r+1, c)) {
				n++
			}
			if trapped(v, neighbour(b, r, c-1), neighbour(b, r, c+1)) {
				n++
			}
		}
	}
	return n
}

func neighbour(b board.Board, r, c int) int {
	if r < 0 || r >= board.Size || c < 0 || c >= board.Size {
		return board.Wall
	}
	return b[r][c]
}

func trapped(v, before, after int) bool {
	return v < before && v < after && before > 2 && after > 2
}

func inCorner(b board.Board, tile int) bool {
	last := board.Size - 1
	return b[0][0] == tile || b[0][last] == tile || b[last][0] == tile || b[last][last] == tile
}
