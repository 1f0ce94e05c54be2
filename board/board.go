package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

const Size = 4

// Wall ranks above every legal tile. Off-board neighbours are treated as walls.
const Wall = 12289

// Ranks lists every value a nonzero tile may hold, in increasing order.
var Ranks = []int{1, 2, 3, 6, 12, 24, 48, 96, 192, 384, 768, 1536, 3072, 6144, 12288}

var ErrMalformed = errors.New("malformed board")

// Board is a 4x4 grid of tile ranks, 0 being an empty cell. Board is a value:
// every transform returns a new Board and leaves its receiver untouched.
type Board [Size][Size]int

// FromRows converts an externally supplied grid into a Board.
func FromRows(rows [][]int) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("%w: %d rows", ErrMalformed, len(rows))
	}
	for r, row := range rows {
		if len(row) != Size {
			return b, fmt.Errorf("%w: row %d has %d cells", ErrMalformed, r, len(row))
		}
		for c, v := range row {
			if !IsRank(v) {
				return b, fmt.Errorf("%w: value %d at (%d,%d)", ErrMalformed, v, r, c)
			}
			b[r][c] = v
		}
	}
	return b, nil
}

// FromFlat converts 16 row-major values into a Board.
func FromFlat(cells []int) (Board, error) {
	if len(cells) != Size*Size {
		return Board{}, fmt.Errorf("%w: %d cells", ErrMalformed, len(cells))
	}
	rows := make([][]int, Size)
	for r := range rows {
		rows[r] = cells[r*Size : (r+1)*Size]
	}
	return FromRows(rows)
}

// IsRank reports whether v may appear on a board (0 included).
func IsRank(v int) bool {
	return v == 0 || slices.Contains(Ranks, v)
}

func (b Board) Rows() [][]int {
	rows := make([][]int, Size)
	for r := range b {
		rows[r] = slices.Clone(b[r][:])
	}
	return rows
}

// Flat lists the cells row by row, the inverse of FromFlat.
func (b Board) Flat() []int {
	return lo.Flatten(b.Rows())
}

func (b Board) Equal(other Board) bool {
	return b == other
}

// Copy returns an independent copy of the board.
func (b Board) Copy() Board {
	return b
}

func (b Board) Max() int {
	highest := 0
	for r := range b {
		for _, v := range b[r] {
			highest = max(highest, v)
		}
	}
	return highest
}

// Count returns how many cells hold tile.
func (b Board) Count(tile int) int {
	n := 0
	for r := range b {
		for _, v := range b[r] {
			if v == tile {
				n++
			}
		}
	}
	return n
}

// IsTerminal reports whether no move can change the board: no empty cell and
// no mergeable neighbours on either axis.
func (b Board) IsTerminal() bool {
	if b.Count(0) > 0 {
		return false
	}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size-1; c++ {
			if CanMerge(b[r][c], b[r][c+1]) {
				return false
			}
		}
	}
	for r := 0; r < Size-1; r++ {
		for c := 0; c < Size; c++ {
			if CanMerge(b[r][c], b[r+1][c]) {
				return false
			}
		}
	}
	return true
}

// String renders the board as one bracketed row of integers per line.
func (b Board) String() string {
	var sb strings.Builder
	for r := range b {
		fmt.Fprintln(&sb, b[r][:])
	}
	return sb.String()
}
