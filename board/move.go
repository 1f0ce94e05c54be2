package board

import (
	"errors"
	"fmt"
	"strings"
)

type Direction int

const (
	Right Direction = iota
	Left
	Down
	Up
)

// Directions in canonical move-number order.
var Directions = []Direction{Right, Left, Down, Up}

var ErrUnknownDirection = errors.New("unknown direction")

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	case Down:
		return "down"
	case Up:
		return "up"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right":
		return Right, nil
	case "left":
		return Left, nil
	case "down":
		return Down, nil
	case "up":
		return Up, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// CanMerge reports whether a and b may combine into one cell. An empty side
// always merges, equal ranks from 3 upwards merge, and 1 merges only with 2.
func CanMerge(a, b int) bool {
	low, high := min(a, b), max(a, b)
	if low == 0 {
		return true
	}
	if a == b && a != 1 && b != 2 {
		return true
	}
	return low == 1 && high == 2
}

// CanMergeExcludingEmpty is CanMerge restricted to two real tiles.
func CanMergeExcludingEmpty(a, b int) bool {
	return a > 0 && b > 0 && CanMerge(a, b)
}

// Move shifts the board one step in d. Only Right is implemented directly;
// the other directions are geometric conjugates of it.
func (b Board) Move(d Direction) Board {
	switch d {
	case Right:
		return b.MoveRight()
	case Left:
		return b.MoveLeft()
	case Down:
		return b.MoveDown()
	case Up:
		return b.MoveUp()
	}
	panic(fmt.Sprintf("invalid direction %d", int(d)))
}

// CanMove reports whether moving in d changes the board.
func (b Board) CanMove(d Direction) bool {
	return b.Move(d) != b
}

// MoveRight merges at most once per row, at the merge point nearest the right
// edge, shifting every cell left of it one step right. Rows with no merge
// point are left as they were.
func (b Board) MoveRight() Board {
	var out Board
	for r, row := range b {
		out[r] = row
		for wall := Size - 1; wall > 0; wall-- {
			if !CanMerge(row[wall], row[wall-1]) {
				continue
			}
			var shifted [Size]int
			for i := 0; i < wall; i++ {
				shifted[i+1] = row[i]
			}
			shifted[wall] = row[wall] + row[wall-1]
			for i := wall + 1; i < Size; i++ {
				shifted[i] = row[i]
			}
			if shifted != [Size]int{} {
				out[r] = shifted
			}
			break
		}
	}
	return out
}

func (b Board) MoveLeft() Board {
	return b.MirrorHorizontal().MoveRight().MirrorHorizontal()
}

func (b Board) MoveDown() Board {
	return b.RotateLeft().MoveRight().RotateRight()
}

func (b Board) MoveUp() Board {
	return b.RotateRight().MoveRight().RotateLeft()
}

func (b Board) Transpose() Board {
	var out Board
	for r := range b {
		for c := range b[r] {
			out[c][r] = b[r][c]
		}
	}
	return out
}

// MirrorHorizontal reverses every row.
func (b Board) MirrorHorizontal() Board {
	var out Board
	for r := range b {
		for c := range b[r] {
			out[r][Size-1-c] = b[r][c]
		}
	}
	return out
}

// MirrorVertical flips the board top to bottom. Only used to reconcile the
// orientation of boards read from an external backend.
func (b Board) MirrorVertical() Board {
	return b.MirrorHorizontal().RotateRight().RotateRight()
}

// RotateRight rotates the board a quarter turn clockwise.
func (b Board) RotateRight() Board {
	return b.Transpose().MirrorHorizontal()
}

// RotateLeft rotates the board a quarter turn counter-clockwise.
func (b Board) RotateLeft() Board {
	return b.MirrorHorizontal().Transpose()
}
