package gamemaster

import (
	"context"
	"fmt"
	"strings"

	"threes/board"
)

// State is the screen a game session is on.
type State int

const (
	Playing State = iota
	Lost
	Menu
)

func (s State) String() string {
	switch s {
	case Playing:
		return "PLAYING"
	case Lost:
		return "LOST"
	case Menu:
		return "MENU"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func ParseState(s string) (State, error) {
	switch strings.ToUpper(s) {
	case "PLAYING":
		return Playing, nil
	case "LOST":
		return Lost, nil
	case "MENU":
		return Menu, nil
	}
	return 0, fmt.Errorf("unknown state %q", s)
}

// Backend is a game session the AI plays through. It may live in process or
// on the other end of a connection.
type Backend interface {
	Board(ctx context.Context) (board.Board, error)
	NextTile(ctx context.Context) (int, error)
	MakeMove(ctx context.Context, d board.Direction) error
	State(ctx context.Context) (State, error)
	Restart(ctx context.Context) error
}
