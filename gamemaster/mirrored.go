package gamemaster

import (
	"context"

	"threes/board"
)

// Mirrored adapts a Backend that reports its board upside down. Boards are
// flipped on read; moves already refer to the real board and pass through.
type Mirrored struct {
	Backend
}

func NewMirrored(b Backend) *Mirrored {
	return &Mirrored{Backend: b}
}

func (m *Mirrored) Board(ctx context.Context) (board.Board, error) {
	b, err := m.Backend.Board(ctx)
	if err != nil {
		return board.Board{}, err
	}
	return b.MirrorVertical(), nil
}
