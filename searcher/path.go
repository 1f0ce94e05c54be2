package searcher

import (
	"threes/board"
)

// Path is a hypothetical sequence of moves, used only to rank its first move.
type Path []board.Direction

// Enumerate returns every path of the given depth in lexicographic order of
// move numbers, so paths sharing a first move are contiguous.
func Enumerate(depth int) []Path {
	if depth < 1 {
		panic("depth must be positive")
	}
	n := 1
	for i := 0; i < depth; i++ {
		n *= len(board.Directions)
	}

	paths := make([]Path, n)
	for i := range paths {
		path := make(Path, depth)
		rest := i
		for step := depth - 1; step >= 0; step-- {
			path[step] = board.Directions[rest%len(board.Directions)]
			rest /= len(board.Directions)
		}
		paths[i] = path
	}
	return paths
}

// firsts returns the index of the first path for each first move.
func firsts(paths []Path) []int {
	stride := len(paths) / len(board.Directions)
	indices := make([]int, len(board.Directions))
	for i := range indices {
		indices[i] = i * stride
	}
	return indices
}
